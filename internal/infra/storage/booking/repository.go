package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var bookingColumns = []string{
	"id",
	"booking_number",
	"provider_id",
	"customer_user_id",
	"location_id",
	"location_type",
	"address",
	"timezone",
	"status",
	"start_at",
	"end_at",
	"subtotal",
	"travel_fee",
	"discount_amount",
	"total_amount",
	"currency",
	"payment_method",
	"promotion_code",
	"client_info",
	"notes",
	"hold_id",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

var serviceColumns = []string{
	"id",
	"booking_id",
	"offering_id",
	"staff_id",
	"start_at",
	"end_at",
	"duration_minutes",
	"price",
	"prep_buffer_minutes",
	"post_buffer_minutes",
}

// Create создает бронирование вместе с услугами, доп. позициями и участниками.
// Должен вызываться внутри транзакции, иначе при ошибке на дочерних таблицах
// останется частично записанное бронирование.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	address, err := encodeJSON(booking.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - address: %w", ErrEncode, err)
	}
	clientInfo, err := encodeJSON(booking.ClientInfo)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - client_info: %w", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"booking_number",
			"provider_id",
			"customer_user_id",
			"location_id",
			"location_type",
			"address",
			"timezone",
			"status",
			"start_at",
			"end_at",
			"subtotal",
			"travel_fee",
			"discount_amount",
			"total_amount",
			"currency",
			"payment_method",
			"promotion_code",
			"client_info",
			"notes",
			"hold_id",
		).
		Values(
			booking.BookingNumber,
			booking.ProviderID,
			booking.CustomerUserID,
			booking.LocationID,
			booking.LocationType,
			address,
			booking.Timezone,
			booking.Status,
			booking.StartAt,
			booking.EndAt,
			booking.Subtotal,
			booking.TravelFee,
			booking.DiscountAmount,
			booking.TotalAmount,
			booking.Currency,
			booking.PaymentMethod,
			booking.PromotionCode,
			clientInfo,
			booking.Notes,
			booking.HoldID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	for i := range booking.Services {
		s := &booking.Services[i]
		s.BookingID = booking.ID

		query, args, err := psqlbuilder.Insert("booking_services").
			Columns(serviceColumns[1:]...).
			Values(
				s.BookingID,
				s.OfferingID,
				s.StaffID,
				s.StartAt,
				s.EndAt,
				s.DurationMinutes,
				s.Price,
				s.PrepBufferMinutes,
				s.PostBufferMinutes,
			).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: Create - build service insert: %w", ErrBuildQuery, err)
		}
		if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.ID); err != nil {
			return nil, fmt.Errorf("%w: Create - insert service: %w", ErrExecQuery, err)
		}
	}

	if len(booking.Addons) > 0 {
		insert := psqlbuilder.Insert("booking_addons").Columns("booking_id", "offering_id", "quantity", "price")
		for _, a := range booking.Addons {
			insert = insert.Values(booking.ID, a.OfferingID, a.Quantity, a.Price)
		}
		if err := r.exec(ctx, executor, "Create - addons", insert); err != nil {
			return nil, err
		}
	}

	if len(booking.Participants) > 0 {
		insert := psqlbuilder.Insert("booking_participants").Columns("booking_id", "name", "email", "phone")
		for _, p := range booking.Participants {
			insert = insert.Values(booking.ID, p.Name, nullString(p.Email), nullString(p.Phone))
		}
		if err := r.exec(ctx, executor, "Create - participants", insert); err != nil {
			return nil, err
		}
	}

	return booking, nil
}

// GetByID получает бронирование по ID вместе с услугами, доп. позициями и участниками
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	if booking.Services, err = r.getServices(ctx, executor, id); err != nil {
		return nil, err
	}
	if booking.Addons, err = r.getAddons(ctx, executor, id); err != nil {
		return nil, err
	}
	if booking.Participants, err = r.getParticipants(ctx, executor, id); err != nil {
		return nil, err
	}

	return booking, nil
}

// GetStaffServices получает услуги активных бронирований сотрудников, пересекающие [from, to).
// Внутри транзакции строки блокируются (FOR UPDATE), чтобы параллельное создание
// бронирования на то же время ждало фиксации текущего.
func (r *Repository) GetStaffServices(ctx context.Context, staffIDs []int64, from, to time.Time) ([]*domain.BookingService, error) {
	if len(staffIDs) == 0 {
		return []*domain.BookingService{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	inactive := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		inactive[i] = string(s)
	}

	columns := make([]string, len(serviceColumns))
	for i, c := range serviceColumns {
		columns[i] = "bs." + c
	}

	selectBuilder := psqlbuilder.Select(columns...).
		From("booking_services bs").
		Join("bookings b ON b.id = bs.booking_id").
		Where(squirrel.Eq{"bs.staff_id": staffIDs}).
		Where(squirrel.NotEq{"b.status": inactive}).
		Where(squirrel.Lt{"bs.start_at": to}).
		Where(squirrel.Gt{"bs.end_at": from}).
		OrderBy("bs.start_at ASC")

	// Если используется транзакция, блокируем найденные услуги
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF bs")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaffServices - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaffServices - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BookingService, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetStaffServices - scan row: %w", ErrScanRow, err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetStaffServices - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason *string, at time.Time) error {
	update := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id})

	return r.execAffected(ctx, "Cancel", update)
}

// Reschedule сохраняет новое время бронирования и всех его услуг
func (r *Repository) Reschedule(ctx context.Context, booking *domain.Booking, at time.Time) error {
	update := psqlbuilder.Update("bookings").
		Set("start_at", booking.StartAt).
		Set("end_at", booking.EndAt).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": booking.ID})
	if err := r.execAffected(ctx, "Reschedule", update); err != nil {
		return err
	}

	for _, s := range booking.Services {
		update := psqlbuilder.Update("booking_services").
			Set("start_at", s.StartAt).
			Set("end_at", s.EndAt).
			Where(squirrel.Eq{"id": s.ID, "booking_id": booking.ID})
		if err := r.execAffected(ctx, "Reschedule - service", update); err != nil {
			return err
		}
	}

	return nil
}

// AttachCustomFields сохраняет ответы на дополнительные поля бронирования
func (r *Repository) AttachCustomFields(ctx context.Context, bookingID int64, values []domain.CustomFieldValue) error {
	if len(values) == 0 {
		return nil
	}
	insert := psqlbuilder.Insert("booking_custom_field_values").Columns("booking_id", "field_id", "value")
	for _, v := range values {
		insert = insert.Values(bookingID, v.FieldID, v.Value)
	}
	insert = insert.Suffix("ON CONFLICT (booking_id, field_id) DO UPDATE SET value = EXCLUDED.value")
	return r.exec(ctx, dbmetrics.GetExecutor(ctx, r.db), "AttachCustomFields", insert)
}

// AttachFormResponses сохраняет ответы на анкеты провайдера
func (r *Repository) AttachFormResponses(ctx context.Context, bookingID int64, responses []domain.FormResponse) error {
	if len(responses) == 0 {
		return nil
	}
	insert := psqlbuilder.Insert("booking_form_responses").Columns("booking_id", "form_id", "answers")
	for _, resp := range responses {
		answers, err := json.Marshal(resp.Answers)
		if err != nil {
			return fmt.Errorf("%w: AttachFormResponses - answers: %w", ErrEncode, err)
		}
		insert = insert.Values(bookingID, resp.FormID, string(answers))
	}
	insert = insert.Suffix("ON CONFLICT (booking_id, form_id) DO UPDATE SET answers = EXCLUDED.answers")
	return r.exec(ctx, dbmetrics.GetExecutor(ctx, r.db), "AttachFormResponses", insert)
}

// Helper methods

func (r *Repository) exec(ctx context.Context, executor DBExecutor, method string, insert squirrel.InsertBuilder) error {
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build insert query: %w", ErrBuildQuery, method, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s - execute insert: %w", ErrExecQuery, method, err)
	}
	return nil
}

func (r *Repository) execAffected(ctx context.Context, method string, update squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %w", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, method, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *Repository) getServices(ctx context.Context, executor DBExecutor, bookingID int64) ([]domain.BookingService, error) {
	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("booking_services").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("start_at ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getServices - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getServices - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]domain.BookingService, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: getServices - scan row: %w", ErrScanRow, err)
		}
		services = append(services, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getServices - rows error: %w", ErrScanRow, err)
	}
	return services, nil
}

func (r *Repository) getAddons(ctx context.Context, executor DBExecutor, bookingID int64) ([]domain.BookingAddon, error) {
	query, args, err := psqlbuilder.Select("offering_id", "quantity", "price").
		From("booking_addons").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getAddons - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getAddons - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	addons := make([]domain.BookingAddon, 0)
	for rows.Next() {
		var a domain.BookingAddon
		if err := rows.Scan(&a.OfferingID, &a.Quantity, &a.Price); err != nil {
			return nil, fmt.Errorf("%w: getAddons - scan row: %w", ErrScanRow, err)
		}
		addons = append(addons, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getAddons - rows error: %w", ErrScanRow, err)
	}
	return addons, nil
}

func (r *Repository) getParticipants(ctx context.Context, executor DBExecutor, bookingID int64) ([]domain.BookingParticipant, error) {
	query, args, err := psqlbuilder.Select("name", "COALESCE(email, '')", "COALESCE(phone, '')").
		From("booking_participants").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getParticipants - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getParticipants - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	participants := make([]domain.BookingParticipant, 0)
	for rows.Next() {
		var p domain.BookingParticipant
		if err := rows.Scan(&p.Name, &p.Email, &p.Phone); err != nil {
			return nil, fmt.Errorf("%w: getParticipants - scan row: %w", ErrScanRow, err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getParticipants - rows error: %w", ErrScanRow, err)
	}
	return participants, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row scanner) (*domain.Booking, error) {
	var b domain.Booking
	var address, clientInfo []byte
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.ProviderID,
		&b.CustomerUserID,
		&b.LocationID,
		&b.LocationType,
		&address,
		&b.Timezone,
		&b.Status,
		&b.StartAt,
		&b.EndAt,
		&b.Subtotal,
		&b.TravelFee,
		&b.DiscountAmount,
		&b.TotalAmount,
		&b.Currency,
		&b.PaymentMethod,
		&b.PromotionCode,
		&clientInfo,
		&b.Notes,
		&b.HoldID,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	if len(address) > 0 {
		b.Address = &domain.Address{}
		if err := json.Unmarshal(address, b.Address); err != nil {
			return nil, fmt.Errorf("decode address: %w", err)
		}
	}
	if len(clientInfo) > 0 {
		b.ClientInfo = &domain.ClientInfo{}
		if err := json.Unmarshal(clientInfo, b.ClientInfo); err != nil {
			return nil, fmt.Errorf("decode client_info: %w", err)
		}
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}

func scanService(row scanner) (*domain.BookingService, error) {
	var s domain.BookingService
	if err := row.Scan(
		&s.ID,
		&s.BookingID,
		&s.OfferingID,
		&s.StaffID,
		&s.StartAt,
		&s.EndAt,
		&s.DurationMinutes,
		&s.Price,
		&s.PrepBufferMinutes,
		&s.PostBufferMinutes,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// encodeJSON сериализует значение для JSONB колонки, nil -> NULL.
// Передается строкой: lib/pq кодирует []byte как bytea.
func encodeJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
