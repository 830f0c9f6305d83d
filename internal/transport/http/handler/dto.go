package handler

import (
	"employee-api/internal/domain"
)

// EmployeeCreateRequest 创建入参。必填校验走 gin binding。
type EmployeeCreateRequest struct {
	Name       string       `json:"name" binding:"required,max=255"`
	Middlename string       `json:"middlename" binding:"omitempty,max=255"`
	Firstname  string       `json:"firstname" binding:"required,max=255"`
	Lastname   string       `json:"lastname" binding:"omitempty,max=255"`
	Genre      string       `json:"genre" binding:"omitempty,oneof=M F"`
	Birthdate  *domain.Date `json:"birthdate"`
	DNI        string       `json:"dni" binding:"required,max=25"`
	Position   string       `json:"position" binding:"omitempty,max=255"`
	Active     bool         `json:"active"`
}

func (r *EmployeeCreateRequest) ToEmployee() domain.Employee {
	e := domain.Employee{
		Name:       r.Name,
		Middlename: r.Middlename,
		Firstname:  r.Firstname,
		Lastname:   r.Lastname,
		Genre:      r.Genre,
		DNI:        r.DNI,
		Position:   r.Position,
		Active:     r.Active,
	}
	if r.Birthdate != nil {
		e.Birthdate = *r.Birthdate
	}
	return e
}

// EmployeeUpdateRequest 更新入参：创建入参 + 必填 id。与创建分成两个结构体，
// 指针字段区分“未传”和“传了空值”。
type EmployeeUpdateRequest struct {
	ID         string       `json:"id" binding:"required"`
	Name       *string      `json:"name" binding:"omitempty,max=255"`
	Middlename *string      `json:"middlename" binding:"omitempty,max=255"`
	Firstname  *string      `json:"firstname" binding:"omitempty,max=255"`
	Lastname   *string      `json:"lastname" binding:"omitempty,max=255"`
	Genre      *string      `json:"genre" binding:"omitempty,oneof=M F"`
	Birthdate  *domain.Date `json:"birthdate"`
	DNI        *string      `json:"dni" binding:"omitempty,max=25"`
	Position   *string      `json:"position" binding:"omitempty,max=255"`
	Active     bool         `json:"active"`
}

func (r *EmployeeUpdateRequest) ToPatch() domain.EmployeePatch {
	return domain.EmployeePatch{
		ID:         r.ID,
		Name:       r.Name,
		Middlename: r.Middlename,
		Firstname:  r.Firstname,
		Lastname:   r.Lastname,
		Genre:      r.Genre,
		Birthdate:  r.Birthdate,
		DNI:        r.DNI,
		Position:   r.Position,
		Active:     r.Active,
	}
}
