// Package memory provides in-process implementations of every repository.
// It backs the memory storage driver and the service tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
	"github.com/google/uuid"
)

type assignmentKey struct {
	companyID  string
	employeeID string
	date       string
}

type balanceKey struct {
	employeeID string
	month      int
	year       int
}

type tables struct {
	companies   map[string]company.Company
	policies    map[string]company.DeductionPolicy
	employees   map[string]employee.Employee
	shifts      map[string]schedule.Shift
	assignments map[assignmentKey]schedule.ShiftAssignment
	attendances map[string]attendance.Attendance
	balances    map[balanceKey]deduction.GraceBalance
	deductions  map[string]deduction.Deduction
}

func newTables() tables {
	return tables{
		companies:   make(map[string]company.Company),
		policies:    make(map[string]company.DeductionPolicy),
		employees:   make(map[string]employee.Employee),
		shifts:      make(map[string]schedule.Shift),
		assignments: make(map[assignmentKey]schedule.ShiftAssignment),
		attendances: make(map[string]attendance.Attendance),
		balances:    make(map[balanceKey]deduction.GraceBalance),
		deductions:  make(map[string]deduction.Deduction),
	}
}

func (t tables) clone() tables {
	return tables{
		companies:   maps.Clone(t.companies),
		policies:    maps.Clone(t.policies),
		employees:   maps.Clone(t.employees),
		shifts:      maps.Clone(t.shifts),
		assignments: maps.Clone(t.assignments),
		attendances: maps.Clone(t.attendances),
		balances:    maps.Clone(t.balances),
		deductions:  maps.Clone(t.deductions),
	}
}

// Store holds all tables. Writes are serialized through txMu; a transaction holds
// txMu for its whole duration and restores a snapshot when fn fails.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data tables
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: newTables(), now: time.Now}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// WithinTransaction implements database.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) write(ctx context.Context, fn func(t *tables) error) error {
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func (s *Store) read(fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
