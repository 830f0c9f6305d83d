package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"employee-api/internal/domain"
	"employee-api/internal/repo/repotest"
	"employee-api/internal/service"
)

func newService(t *testing.T) (*service.EmployeeService, *repotest.FakeRepo) {
	t.Helper()
	fake := repotest.NewFakeRepo()
	return service.NewEmployeeService(fake, zap.NewNop()), fake
}

func employee(name, dni string) domain.Employee {
	birth, _ := domain.ParseDate("1984-12-13")
	return domain.Employee{
		Name:      name,
		Firstname: "Tiro",
		Genre:     "M",
		Birthdate: birth,
		DNI:       dni,
		Position:  "Developer",
		Active:    true,
	}
}

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	svc, _ := newService(t)

	e := employee("Daniel", "TIBD841213Q50")
	created, err := svc.Create(context.Background(), &e)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.Active)
	assert.Nil(t, created.UpdatedAt)
	assert.Nil(t, created.DeletedAt)
}

func TestCreateRejectsNilAndPresetID(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	e := employee("Daniel", "TIBD841213Q50")
	e.ID = "preset"
	_, err = svc.Create(context.Background(), &e)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestCreateDuplicateDNIIsCaseInsensitive(t *testing.T) {
	svc, fake := newService(t)

	a := employee("Daniel", "TIBD841213Q50")
	_, err := svc.Create(context.Background(), &a)
	require.NoError(t, err)

	b := employee("Impostor", "tibd841213q50")
	_, err = svc.Create(context.Background(), &b)
	assert.ErrorIs(t, err, service.ErrDuplicate)
	assert.Contains(t, err.Error(), "tibd841213q50")

	// 第二次写入没有落库
	assert.Len(t, fake.Employees, 1)
}

func TestCreateDuplicateCaughtByUniqueIndexUnderRace(t *testing.T) {
	svc, fake := newService(t)

	a := employee("Daniel", "TIBD841213Q50")
	_, err := svc.Create(context.Background(), &a)
	require.NoError(t, err)

	// 预检查不到（模拟并发窗口），唯一索引兜底，错误仍归一为 duplicate
	fake.BlindDNI = true
	b := employee("Racer", "TIBD841213Q50")
	_, err = svc.Create(context.Background(), &b)
	assert.ErrorIs(t, err, service.ErrDuplicate)
}

func TestCreateWrapsStoreFailure(t *testing.T) {
	svc, fake := newService(t)
	fake.FailWith = errors.New("connection reset")

	e := employee("Daniel", "TIBD841213Q50")
	_, err := svc.Create(context.Background(), &e)
	assert.ErrorIs(t, err, service.ErrService)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFindAllRequiresPageRequest(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.FindAll(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestFindAllReturnsPageWithTotals(t *testing.T) {
	svc, _ := newService(t)
	for _, n := range []string{"Ana", "Bruno", "Carla"} {
		e := employee(n, "DNI-"+n)
		_, err := svc.Create(context.Background(), &e)
		require.NoError(t, err)
	}

	page := domain.PageRequest{Page: 0, Size: 2, Sort: "name"}
	result, err := svc.FindAll(context.Background(), &page)
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.TotalElements)
	assert.Equal(t, 2, result.TotalPages)
	require.Len(t, result.Content, 2)
	assert.Equal(t, "Ana", result.Content[0].Name)
}

func TestFindByDNI(t *testing.T) {
	svc, _ := newService(t)
	e := employee("Daniel", "TIBD841213Q50")
	_, err := svc.Create(context.Background(), &e)
	require.NoError(t, err)

	found, err := svc.FindByDNI(context.Background(), "tibd841213q50", true)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Daniel", found.Name)

	// 查不到是“缺席”，不是错误
	missing, err := svc.FindByDNI(context.Background(), "NOPE", true)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = svc.FindByDNI(context.Background(), "  ", true)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestFindByDNIActiveFilter(t *testing.T) {
	svc, _ := newService(t)
	e := employee("Daniel", "TIBD841213Q50")
	created, err := svc.Create(context.Background(), &e)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	found, err := svc.FindByDNI(context.Background(), "TIBD841213Q50", true)
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = svc.FindByDNI(context.Background(), "TIBD841213Q50", false)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.Active)
}

func TestFindByNameContainsFiltersInactive(t *testing.T) {
	svc, _ := newService(t)

	daniel := employee("Daniel", "DNI-1")
	_, err := svc.Create(context.Background(), &daniel)
	require.NoError(t, err)

	daniela := employee("Daniela", "DNI-2")
	created, err := svc.Create(context.Background(), &daniela)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	page := domain.PageRequest{Page: 0, Size: 10, Sort: "name"}
	result, err := svc.FindByNameContains(context.Background(), "dan", true, &page)
	require.NoError(t, err)

	require.Len(t, result.Content, 1)
	assert.Equal(t, "Daniel", result.Content[0].Name)
}

func TestUpdateMergesOnlySetFields(t *testing.T) {
	svc, _ := newService(t)
	e := employee("Daniel", "TIBD841213Q50")
	created, err := svc.Create(context.Background(), &e)
	require.NoError(t, err)

	position := "Senior Developer"
	updated, err := svc.Update(context.Background(), &domain.EmployeePatch{
		ID:       created.ID,
		Position: &position,
		Active:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Senior Developer", updated.Position)
	assert.Equal(t, "Daniel", updated.Name)
	assert.Equal(t, "TIBD841213Q50", updated.DNI)
	assert.Equal(t, e.Birthdate, updated.Birthdate)
	require.NotNil(t, updated.UpdatedAt)
	assert.WithinDuration(t, time.Now(), *updated.UpdatedAt, time.Minute)
	assert.True(t, updated.Active)
}

func TestUpdateAlwaysWritesActiveFromPatch(t *testing.T) {
	svc, _ := newService(t)
	e := employee("Daniel", "TIBD841213Q50")
	created, err := svc.Create(context.Background(), &e)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), &domain.EmployeePatch{
		ID:     created.ID,
		Active: false,
	})
	require.NoError(t, err)
	assert.False(t, updated.Active)
}

func TestUpdateValidation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	_, err = svc.Update(context.Background(), &domain.EmployeePatch{})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	_, err = svc.Update(context.Background(), &domain.EmployeePatch{ID: "missing"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateRejectsDNITakenByAnother(t *testing.T) {
	svc, _ := newService(t)

	a := employee("Daniel", "DNI-A")
	_, err := svc.Create(context.Background(), &a)
	require.NoError(t, err)

	b := employee("Bruno", "DNI-B")
	createdB, err := svc.Create(context.Background(), &b)
	require.NoError(t, err)

	taken := "dni-a"
	_, err = svc.Update(context.Background(), &domain.EmployeePatch{
		ID:     createdB.ID,
		DNI:    &taken,
		Active: true,
	})
	assert.ErrorIs(t, err, service.ErrDuplicate)
}

func TestUpdateAllowsRecasingOwnDNI(t *testing.T) {
	svc, _ := newService(t)
	e := employee("Daniel", "TIBD841213Q50")
	created, err := svc.Create(context.Background(), &e)
	require.NoError(t, err)

	recased := "tibd841213q50"
	updated, err := svc.Update(context.Background(), &domain.EmployeePatch{
		ID:     created.ID,
		DNI:    &recased,
		Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "tibd841213q50", updated.DNI)
}

func TestDeleteSoftDeletesOnce(t *testing.T) {
	svc, fake := newService(t)
	e := employee("Daniel", "TIBD841213Q50")
	created, err := svc.Create(context.Background(), &e)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	stored := fake.Employees[created.ID]
	assert.False(t, stored.Active)
	require.NotNil(t, stored.DeletedAt)
	firstDeletedAt := *stored.DeletedAt

	// 删除不幂等，第二次报错且状态不变
	err = svc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, service.ErrService)
	assert.Contains(t, err.Error(), "already deleted")

	stored = fake.Employees[created.ID]
	assert.False(t, stored.Active)
	assert.Equal(t, firstDeletedAt, *stored.DeletedAt)
}

func TestDeleteValidation(t *testing.T) {
	svc, _ := newService(t)

	assert.ErrorIs(t, svc.Delete(context.Background(), ""), service.ErrInvalidArgument)
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), service.ErrNotFound)
}

func TestBulkCreateIsolatesFailures(t *testing.T) {
	svc, fake := newService(t)

	seed := employee("Existing", "DNI-DUP")
	_, err := svc.Create(context.Background(), &seed)
	require.NoError(t, err)

	results, err := svc.BulkCreate(context.Background(), []domain.Employee{
		employee("Fresh", "DNI-FRESH"),
		employee("Clash", "dni-dup"),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "DNI-FRESH", results[0].DNI)
	assert.Equal(t, 200, results[0].Code)
	assert.Equal(t, "OK", results[0].Message)
	require.NotNil(t, results[0].ID)

	assert.Equal(t, "dni-dup", results[1].DNI)
	assert.Equal(t, 500, results[1].Code)
	assert.Nil(t, results[1].ID)
	assert.Contains(t, results[1].Message, "already exists")

	// 第一条已提交，不受第二条失败影响
	assert.Len(t, fake.Employees, 2)
	committed, err := svc.FindByDNI(context.Background(), "DNI-FRESH", true)
	require.NoError(t, err)
	assert.NotNil(t, committed)
}

func TestBulkCreateEmptyAndNil(t *testing.T) {
	svc, _ := newService(t)

	results, err := svc.BulkCreate(context.Background(), []domain.Employee{})
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = svc.BulkCreate(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestBulkCreatePreservesInputOrder(t *testing.T) {
	svc, _ := newService(t)

	results, err := svc.BulkCreate(context.Background(), []domain.Employee{
		employee("C", "DNI-C"),
		employee("A", "DNI-A"),
		employee("A again", "dni-a"),
		employee("B", "DNI-B"),
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, []string{"DNI-C", "DNI-A", "dni-a", "DNI-B"},
		[]string{results[0].DNI, results[1].DNI, results[2].DNI, results[3].DNI})
	assert.Equal(t, []int{200, 200, 500, 200},
		[]int{results[0].Code, results[1].Code, results[2].Code, results[3].Code})
}
