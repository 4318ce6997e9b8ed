package department

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stafftrack/wfm-backend-go/internal/domain/department"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/clock12"
)

type cacheEntry struct {
	dept      department.Department
	expiresAt time.Time
}

// TimingProviderImpl caches parsed department configuration with a fixed
// TTL. Timing updates call Invalidate so a stale window never outlives an
// administrative change; everything else simply ages out.
type TimingProviderImpl struct {
	repo department.DepartmentRepository
	ttl  time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry

	now func() time.Time
}

func NewTimingProvider(repo department.DepartmentRepository, ttl time.Duration) *TimingProviderImpl {
	return &TimingProviderImpl{
		repo:  repo,
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
		now:   time.Now,
	}
}

// DepartmentFor implements department.TimingProvider. The returned
// department's timing has already passed strict clock parsing; callers can
// rely on it being well-formed.
func (p *TimingProviderImpl) DepartmentFor(ctx context.Context, departmentID string) (department.Department, error) {
	p.mu.RLock()
	entry, ok := p.cache[departmentID]
	p.mu.RUnlock()
	if ok && p.now().Before(entry.expiresAt) {
		return entry.dept, nil
	}

	dept, err := p.repo.GetByID(ctx, departmentID)
	if err != nil {
		return department.Department{}, err
	}

	if _, err := clock12.Parse(dept.Timing.CheckInTime); err != nil {
		return department.Department{}, fmt.Errorf("%w: check-in time %q", department.ErrInvalidTiming, dept.Timing.CheckInTime)
	}
	if _, err := clock12.Parse(dept.Timing.CheckOutTime); err != nil {
		return department.Department{}, fmt.Errorf("%w: check-out time %q", department.ErrInvalidTiming, dept.Timing.CheckOutTime)
	}

	p.mu.Lock()
	p.cache[departmentID] = cacheEntry{dept: dept, expiresAt: p.now().Add(p.ttl)}
	p.mu.Unlock()

	return dept, nil
}

// IsHoliday implements department.TimingProvider. Holiday rows are few and
// date-bounded, so they are read through directly rather than cached.
func (p *TimingProviderImpl) IsHoliday(ctx context.Context, departmentID string, date time.Time) (bool, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	holidays, err := p.repo.GetHolidays(ctx, departmentID, day, day)
	if err != nil {
		return false, err
	}
	return len(holidays) > 0, nil
}

// Invalidate implements department.TimingProvider.
func (p *TimingProviderImpl) Invalidate(departmentID string) {
	p.mu.Lock()
	delete(p.cache, departmentID)
	p.mu.Unlock()
}

// DepartmentServiceImpl exposes department administration on top of the
// repository, keeping the timing cache coherent on writes.
type DepartmentServiceImpl struct {
	repo     department.DepartmentRepository
	provider department.TimingProvider
}

func NewDepartmentService(repo department.DepartmentRepository, provider department.TimingProvider) *DepartmentServiceImpl {
	return &DepartmentServiceImpl{repo: repo, provider: provider}
}

func (s *DepartmentServiceImpl) Get(ctx context.Context, id string) (department.Department, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DepartmentServiceImpl) List(ctx context.Context) ([]department.Department, error) {
	return s.repo.List(ctx)
}

// UpdateTiming validates and persists the new clock configuration, then
// drops the cached entry so the next read sees it immediately.
func (s *DepartmentServiceImpl) UpdateTiming(ctx context.Context, departmentID string, req department.UpdateTimingRequest) (department.Department, error) {
	if err := req.Validate(); err != nil {
		return department.Department{}, err
	}

	timing := department.Timing{
		CheckInTime:              req.CheckInTime,
		CheckOutTime:             req.CheckOutTime,
		LateThresholdMinutes:     req.LateThresholdMinutes,
		OvertimeThresholdMinutes: req.OvertimeThresholdMinutes,
		WorkingHours:             req.WorkingHours,
	}

	if err := s.repo.UpdateTiming(ctx, departmentID, timing); err != nil {
		return department.Department{}, err
	}
	s.provider.Invalidate(departmentID)

	return s.repo.GetByID(ctx, departmentID)
}
