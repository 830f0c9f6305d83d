package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"employee-api/internal/domain"
)

type EmployeeRepo struct{ db *gorm.DB }

func NewEmployeeRepo(db *gorm.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

func (r *EmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepo) Save(ctx context.Context, e *domain.Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *EmployeeRepo) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	var e domain.Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepo) FindByDNI(ctx context.Context, dni string) (*domain.Employee, error) {
	var e domain.Employee
	err := r.db.WithContext(ctx).First(&e, "LOWER(dni) = LOWER(?)", dni).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepo) FindByDNIAndActive(ctx context.Context, dni string, active bool) (*domain.Employee, error) {
	var e domain.Employee
	err := r.db.WithContext(ctx).
		Where("LOWER(dni) = LOWER(?)", dni).
		Where("active = ?", active).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepo) FindAll(ctx context.Context, page domain.PageRequest) ([]domain.Employee, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Employee{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var employees []domain.Employee
	err := q.Order(page.OrderClause()).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&employees).Error
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (r *EmployeeRepo) SearchByName(ctx context.Context, fragment string, active bool, page domain.PageRequest) ([]domain.Employee, int64, error) {
	like := "%" + strings.ToLower(fragment) + "%"
	q := r.db.WithContext(ctx).Model(&domain.Employee{}).
		Where("LOWER(name) LIKE ?", like).
		Where("active = ?", active)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var employees []domain.Employee
	err := q.Order(page.OrderClause()).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&employees).Error
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// InTransaction 每次调用开独立事务；fn 返回错误则只回滚本事务
func (r *EmployeeRepo) InTransaction(ctx context.Context, fn func(domain.EmployeeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&EmployeeRepo{db: tx})
	})
}
