package domain

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"employee-api/pkg/utils"
)

// Employee 员工实体。dni 是业务上的唯一键（忽略大小写），软删只翻转
// active/deleted_at，不做物理删除。
type Employee struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	Middlename string     `gorm:"size:255" json:"middlename"`
	Firstname  string     `gorm:"size:255;not null" json:"firstname"`
	Lastname   string     `gorm:"size:255" json:"lastname"`
	Genre      string     `gorm:"size:1;not null" json:"genre"`
	Birthdate  Date       `gorm:"type:date;not null" json:"birthdate"`
	DNI        string     `gorm:"column:dni;size:25;not null;uniqueIndex:idx_employee_dni" json:"dni"`
	Position   string     `gorm:"size:255" json:"position"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
	DeletedAt  *time.Time `json:"deletedAt"`
	Active     bool       `gorm:"not null;default:true" json:"active"`
}

func (Employee) TableName() string { return "employees" }

// BeforeCreate ID 由存储层生成，调用方不传
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.NewID()
	}
	return nil
}

// Age 按整年计算，不落库
func (e *Employee) Age() int {
	return e.Birthdate.YearsUntil(time.Now())
}

// EqualsByDNI 业务相等性按 dni 判断（忽略大小写），不做结构相等
func (e *Employee) EqualsByDNI(other *Employee) bool {
	if other == nil {
		return false
	}
	return strings.EqualFold(e.DNI, other.DNI)
}

// EmployeePatch 部分更新：nil 字段保持原值，Active 总是覆盖
type EmployeePatch struct {
	ID         string
	Name       *string
	Middlename *string
	Firstname  *string
	Lastname   *string
	Genre      *string
	Birthdate  *Date
	DNI        *string
	Position   *string
	Active     bool
}

// MergeEmployee 纯函数：existing + patch -> merged。id/createdAt/deletedAt
// 不经此路径修改。
func MergeEmployee(existing Employee, patch EmployeePatch) Employee {
	out := existing
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Firstname != nil {
		out.Firstname = *patch.Firstname
	}
	if patch.Lastname != nil {
		out.Lastname = *patch.Lastname
	}
	if patch.Middlename != nil {
		out.Middlename = *patch.Middlename
	}
	if patch.Position != nil {
		out.Position = *patch.Position
	}
	if patch.Birthdate != nil {
		out.Birthdate = *patch.Birthdate
	}
	if patch.Genre != nil {
		out.Genre = *patch.Genre
	}
	if patch.DNI != nil {
		out.DNI = *patch.DNI
	}
	out.Active = patch.Active
	return out
}

// BulkResult 批量创建的单条结果，逐条报告成功/失败
type BulkResult struct {
	DNI     string  `json:"dni"`
	ID      *string `json:"id"`
	Code    int     `json:"code"`
	Message string  `json:"message"`
}

type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) error
	Save(ctx context.Context, e *Employee) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByDNI(ctx context.Context, dni string) (*Employee, error)
	FindByDNIAndActive(ctx context.Context, dni string, active bool) (*Employee, error)
	FindAll(ctx context.Context, page PageRequest) ([]Employee, int64, error)
	SearchByName(ctx context.Context, fragment string, active bool, page PageRequest) ([]Employee, int64, error)
	// InTransaction 在一个全新的事务里执行 fn，提交/回滚只影响本次调用
	InTransaction(ctx context.Context, fn func(EmployeeRepository) error) error
}
