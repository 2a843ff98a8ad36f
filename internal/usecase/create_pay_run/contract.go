package create_pay_run

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// PayrollRepository интерфейс репозитория расчета зарплаты
type PayrollRepository interface {
	GetCompensation(ctx context.Context, staffIDs []int64) (map[int64]*domain.StaffCompensation, error)
	GetCommissionRules(ctx context.Context, providerID int64) ([]*domain.CommissionRule, error)
	GetRevenue(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.RevenueLine, error)
	GetTips(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.TipRecord, error)
	GetShifts(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.WorkedShift, error)
	GetRules(ctx context.Context, providerID int64) (*domain.PayrollRules, error)
	CreatePayRun(ctx context.Context, run *domain.PayRun) error
	CreateItems(ctx context.Context, payRunID int64, items []*domain.PayRunItem) error
}

// StaffRepository интерфейс репозитория сотрудников
type StaffRepository interface {
	GetByUserAndProvider(ctx context.Context, userID, providerID int64) (*domain.Staff, error)
	ListByProvider(ctx context.Context, providerID int64) ([]*domain.Staff, error)
}

// OutboxRepository запись доменных событий
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.Event) error
}

// Metrics счетчик ведомостей
type Metrics interface {
	IncPayRunsCreated()
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
