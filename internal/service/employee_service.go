package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"employee-api/internal/domain"
)

type EmployeeService struct {
	repo domain.EmployeeRepository
	log  *zap.Logger
}

func NewEmployeeService(repo domain.EmployeeRepository, log *zap.Logger) *EmployeeService {
	return &EmployeeService{repo: repo, log: log}
}

// Create 新建员工。id/createdAt 由存储层生成；dni 忽略大小写查重，
// 预检漏掉的并发重复由唯一索引兜底，两条路径都归到 ErrDuplicate。
func (s *EmployeeService) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: employee cannot be nil", ErrInvalidArgument)
	}
	if e.ID != "" {
		return nil, fmt.Errorf("%w: employee ID must not be set on create, use update instead", ErrInvalidArgument)
	}
	// 新记录一律 active，停用只能走软删
	e.Active = true
	e.DeletedAt = nil
	err := s.repo.InTransaction(ctx, func(r domain.EmployeeRepository) error {
		if err := checkForDuplicates(ctx, r, e.DNI); err != nil {
			return err
		}
		return r.Create(ctx, e)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		if isDupKey(err) {
			return nil, duplicateDNI(e.DNI)
		}
		s.log.Error("create employee failed", zap.String("dni", e.DNI), zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrService, rootCause(err))
	}
	return e, nil
}

// FindAll 全量分页，含软删记录
func (s *EmployeeService) FindAll(ctx context.Context, page *domain.PageRequest) (*domain.Page, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: page request cannot be nil", ErrInvalidArgument)
	}
	employees, total, err := s.repo.FindAll(ctx, *page)
	if err != nil {
		s.log.Error("list employees failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrService, rootCause(err))
	}
	return domain.NewPage(employees, total, *page), nil
}

// FindByDNI 精确匹配（忽略大小写）。查不到返回 (nil, nil)，不算错误。
func (s *EmployeeService) FindByDNI(ctx context.Context, dni string, activeOnly bool) (*domain.Employee, error) {
	if strings.TrimSpace(dni) == "" {
		return nil, fmt.Errorf("%w: dni cannot be empty", ErrInvalidArgument)
	}
	var (
		e   *domain.Employee
		err error
	)
	if activeOnly {
		e, err = s.repo.FindByDNIAndActive(ctx, dni, true)
	} else {
		e, err = s.repo.FindByDNI(ctx, dni)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrService, rootCause(err))
	}
	return e, nil
}

// FindByNameContains 按 name 子串搜索（忽略大小写），按 active 过滤
func (s *EmployeeService) FindByNameContains(ctx context.Context, fragment string, active bool, page *domain.PageRequest) (*domain.Page, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: page request cannot be nil", ErrInvalidArgument)
	}
	employees, total, err := s.repo.SearchByName(ctx, fragment, active, *page)
	if err != nil {
		s.log.Error("search employees failed", zap.String("name", fragment), zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrService, rootCause(err))
	}
	return domain.NewPage(employees, total, *page), nil
}

// Update 部分更新：patch 里非 nil 的字段覆盖原值，Active 总是取 patch 的值。
// 改 dni 时与 Create 一样查重（排除自身），不再放任唯一索引报 500。
func (s *EmployeeService) Update(ctx context.Context, patch *domain.EmployeePatch) (*domain.Employee, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: employee cannot be nil", ErrInvalidArgument)
	}
	if patch.ID == "" {
		return nil, fmt.Errorf("%w: employee ID cannot be empty for update", ErrInvalidArgument)
	}
	var updated *domain.Employee
	err := s.repo.InTransaction(ctx, func(r domain.EmployeeRepository) error {
		existing, err := r.FindByID(ctx, patch.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: employee not found: %s", ErrNotFound, patch.ID)
		}
		if patch.DNI != nil && !strings.EqualFold(*patch.DNI, existing.DNI) {
			if err := checkForDuplicates(ctx, r, *patch.DNI); err != nil {
				return err
			}
		}
		merged := domain.MergeEmployee(*existing, *patch)
		now := time.Now()
		merged.UpdatedAt = &now
		if err := r.Save(ctx, &merged); err != nil {
			return err
		}
		updated = &merged
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate):
			return nil, err
		case isDupKey(err) && patch.DNI != nil:
			return nil, duplicateDNI(*patch.DNI)
		default:
			s.log.Error("update employee failed", zap.String("id", patch.ID), zap.Error(err))
			return nil, fmt.Errorf("%w: error updating employee: %s", ErrService, rootCause(err))
		}
	}
	return updated, nil
}

// Delete 软删：active=false + deletedAt。重复删除不幂等，第二次报错。
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: employee ID cannot be empty", ErrInvalidArgument)
	}
	err := s.repo.InTransaction(ctx, func(r domain.EmployeeRepository) error {
		employee, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if employee == nil {
			return fmt.Errorf("%w: employee not found: %s", ErrNotFound, id)
		}
		if !employee.Active {
			return fmt.Errorf("%w: employee already deleted: %s", ErrService, id)
		}
		now := time.Now()
		employee.DeletedAt = &now
		employee.Active = false
		return r.Save(ctx, employee)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrService) {
			return err
		}
		s.log.Error("delete employee failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("%w: %s", ErrService, rootCause(err))
	}
	return nil
}

// BulkCreate 逐条独立事务：某条失败只回滚该条，结果按输入顺序逐条返回，
// 调用本身从不失败。
func (s *EmployeeService) BulkCreate(ctx context.Context, employees []domain.Employee) ([]domain.BulkResult, error) {
	if employees == nil {
		return nil, fmt.Errorf("%w: employee list cannot be nil", ErrInvalidArgument)
	}
	results := make([]domain.BulkResult, 0, len(employees))
	for i := range employees {
		e := &employees[i]
		e.Active = true
		e.DeletedAt = nil
		err := s.repo.InTransaction(ctx, func(r domain.EmployeeRepository) error {
			if err := checkForDuplicates(ctx, r, e.DNI); err != nil {
				return err
			}
			return r.Create(ctx, e)
		})
		if err != nil {
			s.log.Error("bulk create item failed", zap.String("dni", e.DNI), zap.Error(err))
			msg := rootCause(err).Error()
			if errors.Is(err, ErrDuplicate) {
				msg = err.Error()
			}
			results = append(results, domain.BulkResult{
				DNI:     e.DNI,
				Code:    500,
				Message: msg,
			})
			continue
		}
		id := e.ID
		results = append(results, domain.BulkResult{
			DNI:     e.DNI,
			ID:      &id,
			Code:    200,
			Message: "OK",
		})
	}
	return results, nil
}

func duplicateDNI(dni string) error {
	return fmt.Errorf("%w: an employee with DNI '%s' already exists", ErrDuplicate, dni)
}

func checkForDuplicates(ctx context.Context, r domain.EmployeeRepository, dni string) error {
	existing, err := r.FindByDNI(ctx, dni)
	if err != nil {
		return err
	}
	if existing != nil {
		return duplicateDNI(dni)
	}
	return nil
}
