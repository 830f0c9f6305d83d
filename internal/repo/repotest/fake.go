// Package repotest provides an in-memory EmployeeRepository for service and
// handler tests.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"employee-api/internal/domain"
	"employee-api/pkg/utils"
)

// ErrDupKey mimics the store-level unique index violation on dni.
var ErrDupKey = errors.New(`ERROR: duplicate key value violates unique constraint "idx_employee_dni" (SQLSTATE 23505)`)

// FakeRepo 内存版仓库。InTransaction 走 copy-on-write，fn 报错时丢弃副本，
// 等价于回滚，批量创建的隔离性靠它验证。
type FakeRepo struct {
	Employees map[string]domain.Employee
	FailWith  error // 写操作统一返回该错误（模拟存储故障）
	BlindDNI  bool  // FindByDNI 永远查不到，用来逼出唯一索引兜底路径
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{Employees: map[string]domain.Employee{}}
}

func (f *FakeRepo) clone() *FakeRepo {
	cp := NewFakeRepo()
	cp.FailWith = f.FailWith
	cp.BlindDNI = f.BlindDNI
	for id, e := range f.Employees {
		cp.Employees[id] = e
	}
	return cp
}

func (f *FakeRepo) findDNI(dni string, excludeID string) *domain.Employee {
	for _, e := range f.Employees {
		if e.ID != excludeID && strings.EqualFold(e.DNI, dni) {
			out := e
			return &out
		}
	}
	return nil
}

func (f *FakeRepo) Create(ctx context.Context, e *domain.Employee) error {
	if f.FailWith != nil {
		return f.FailWith
	}
	if f.findDNI(e.DNI, "") != nil {
		return ErrDupKey
	}
	if e.ID == "" {
		e.ID = utils.NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	f.Employees[e.ID] = *e
	return nil
}

func (f *FakeRepo) Save(ctx context.Context, e *domain.Employee) error {
	if f.FailWith != nil {
		return f.FailWith
	}
	if f.findDNI(e.DNI, e.ID) != nil {
		return ErrDupKey
	}
	f.Employees[e.ID] = *e
	return nil
}

func (f *FakeRepo) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	if e, ok := f.Employees[id]; ok {
		out := e
		return &out, nil
	}
	return nil, nil
}

func (f *FakeRepo) FindByDNI(ctx context.Context, dni string) (*domain.Employee, error) {
	if f.BlindDNI {
		return nil, nil
	}
	return f.findDNI(dni, ""), nil
}

func (f *FakeRepo) FindByDNIAndActive(ctx context.Context, dni string, active bool) (*domain.Employee, error) {
	e := f.findDNI(dni, "")
	if e == nil || e.Active != active {
		return nil, nil
	}
	return e, nil
}

func (f *FakeRepo) FindAll(ctx context.Context, page domain.PageRequest) ([]domain.Employee, int64, error) {
	return paginate(f.all(), page)
}

func (f *FakeRepo) SearchByName(ctx context.Context, fragment string, active bool, page domain.PageRequest) ([]domain.Employee, int64, error) {
	var matched []domain.Employee
	frag := strings.ToLower(fragment)
	for _, e := range f.all() {
		if e.Active == active && strings.Contains(strings.ToLower(e.Name), frag) {
			matched = append(matched, e)
		}
	}
	return paginate(matched, page)
}

func (f *FakeRepo) InTransaction(ctx context.Context, fn func(domain.EmployeeRepository) error) error {
	tx := f.clone()
	if err := fn(tx); err != nil {
		return err
	}
	f.Employees = tx.Employees
	return nil
}

func (f *FakeRepo) all() []domain.Employee {
	out := make([]domain.Employee, 0, len(f.Employees))
	for _, e := range f.Employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func paginate(all []domain.Employee, page domain.PageRequest) ([]domain.Employee, int64, error) {
	total := int64(len(all))
	start := page.Offset()
	if start > len(all) {
		return nil, total, nil
	}
	end := start + page.Size
	if page.Size <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}
