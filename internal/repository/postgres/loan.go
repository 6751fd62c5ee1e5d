package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, client_id, loan_date, due_date, returned_date, total_amount_cents, fine_amount_cents, status, notes`

const itemColumns = `id, loan_id, book_id, days_rented, daily_rate_cents, subtotal_cents, returned_date, fine_amount_cents`

func scanLoan(row interface{ Scan(dest ...any) error }) (*domain.Loan, error) {
	l := &domain.Loan{}
	var notes sql.NullString
	err := row.Scan(&l.ID, &l.ClientID, &l.LoanDate, &l.DueDate, &l.ReturnedDate,
		&l.TotalAmountCents, &l.FineAmountCents, &l.Status, &notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	l.Notes = notes.String
	return l, nil
}

func scanLoanItem(row interface{ Scan(dest ...any) error }) (*domain.LoanItem, error) {
	it := &domain.LoanItem{}
	err := row.Scan(&it.ID, &it.LoanID, &it.BookID, &it.DaysRented, &it.DailyRateCents,
		&it.SubtotalCents, &it.ReturnedDate, &it.FineAmountCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	q := conn(ctx, r.db)

	query := `INSERT INTO loans (client_id, loan_date, due_date, total_amount_cents, status, notes)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		loan.ClientID, loan.LoanDate, loan.DueDate, loan.TotalAmountCents, loan.Status, loan.Notes).Scan(&loan.ID)
	if err != nil {
		return err
	}

	itemQuery := `INSERT INTO loan_items (loan_id, book_id, days_rented, daily_rate_cents, subtotal_cents)
	              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	for i := range loan.Items {
		it := &loan.Items[i]
		it.LoanID = loan.ID
		if err := q.QueryRowContext(ctx, itemQuery,
			it.LoanID, it.BookID, it.DaysRented, it.DailyRateCents, it.SubtotalCents).Scan(&it.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return scanLoan(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *loanRepository) GetByIDWithDetails(ctx context.Context, id int32) (*domain.Loan, error) {
	loan, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client, err := scanClient(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, loan.ClientID))
	if err != nil {
		return nil, err
	}
	loan.Client = client

	if err := r.loadItems(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *loanRepository) loadItems(ctx context.Context, loan *domain.Loan) error {
	query := `SELECT i.id, i.loan_id, i.book_id, i.days_rented, i.daily_rate_cents, i.subtotal_cents, i.returned_date, i.fine_amount_cents,
	                 b.id, b.title, b.isbn, b.author, b.publisher, b.publication_year, b.category, b.total_copies, b.available_copies, b.daily_rate_cents, b.cover_url, b.active, b.registered_on
	          FROM loan_items i JOIN books b ON b.id = i.book_id
	          WHERE i.loan_id = $1 ORDER BY i.id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, loan.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	loan.Items = nil
	for rows.Next() {
		var it domain.LoanItem
		var b domain.Book
		if err := rows.Scan(&it.ID, &it.LoanID, &it.BookID, &it.DaysRented, &it.DailyRateCents,
			&it.SubtotalCents, &it.ReturnedDate, &it.FineAmountCents,
			&b.ID, &b.Title, &b.ISBN, &b.Author, &b.Publisher, &b.PublicationYear, &b.Category,
			&b.TotalCopies, &b.AvailableCopies, &b.DailyRateCents, &b.CoverURL, &b.Active, &b.RegisteredOn); err != nil {
			return err
		}
		it.Book = &b
		loan.Items = append(loan.Items, it)
	}
	return rows.Err()
}

func (r *loanRepository) GetItem(ctx context.Context, itemID int32) (*domain.LoanItem, error) {
	query := `SELECT ` + itemColumns + ` FROM loan_items WHERE id = $1`
	return scanLoanItem(conn(ctx, r.db).QueryRowContext(ctx, query, itemID))
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	// Identity fields are immutable after creation; only resolution fields move.
	query := `UPDATE loans SET status=$1, returned_date=$2, fine_amount_cents=$3, notes=$4 WHERE id=$5`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		loan.Status, loan.ReturnedDate, loan.FineAmountCents, loan.Notes, loan.ID)
	return err
}

func (r *loanRepository) UpdateItem(ctx context.Context, item *domain.LoanItem) error {
	query := `UPDATE loan_items SET returned_date=$1, fine_amount_cents=$2 WHERE id=$3`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, item.ReturnedDate, item.FineAmountCents, item.ID)
	return err
}

func (r *loanRepository) AllItemsReturned(ctx context.Context, loanID int32) (bool, error) {
	var open int32
	query := `SELECT count(*) FROM loan_items WHERE loan_id = $1 AND returned_date IS NULL`
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, loanID).Scan(&open); err != nil {
		return false, err
	}
	return open == 0, nil
}

func (r *loanRepository) SumItemFines(ctx context.Context, loanID int32) (int32, error) {
	var total int32
	query := `SELECT COALESCE(SUM(fine_amount_cents), 0) FROM loan_items WHERE loan_id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, loanID).Scan(&total)
	return total, err
}

func (r *loanRepository) List(ctx context.Context, filter repository.LoanFilter) ([]domain.Loan, int32, error) {
	base := `FROM loans l JOIN clients c ON c.id = l.client_id WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.ClientID > 0 {
		base += fmt.Sprintf(` AND l.client_id = $%d`, argIdx)
		args = append(args, filter.ClientID)
		argIdx++
	}
	if filter.Status != "" {
		base += fmt.Sprintf(` AND l.status = $%d`, argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.OverdueOnly {
		base += fmt.Sprintf(` AND l.status = $%d AND l.due_date < now()`, argIdx)
		args = append(args, domain.LoanStatusActive)
		argIdx++
	}
	if filter.Search != "" {
		base += fmt.Sprintf(` AND (lower(c.name) LIKE $%d OR c.tax_id LIKE $%d)`, argIdx, argIdx)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		argIdx++
	}

	var count int32
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT count(*) `+base, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if filter.SortDesc {
		dir = "DESC"
	}
	var order string
	switch filter.SortBy {
	case "client":
		order = "c.name " + dir
	case "total":
		order = "l.total_amount_cents " + dir
	case "date":
		order = "l.loan_date " + dir
	default:
		order = "l.loan_date DESC"
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := `SELECT l.id, l.client_id, l.loan_date, l.due_date, l.returned_date, l.total_amount_cents, l.fine_amount_cents, l.status, l.notes,
	                 c.id, c.name, c.tax_id, c.email, c.phone, c.mobile_phone, c.address, c.city, c.state, c.postal_code, c.client_type, c.active, c.registered_on ` +
		base + ` ORDER BY ` + order +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var l domain.Loan
		var c domain.Client
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ClientID, &l.LoanDate, &l.DueDate, &l.ReturnedDate,
			&l.TotalAmountCents, &l.FineAmountCents, &l.Status, &notes,
			&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.MobilePhone, &c.Address,
			&c.City, &c.State, &c.PostalCode, &c.ClientType, &c.Active, &c.RegisteredOn); err != nil {
			return nil, 0, err
		}
		l.Notes = notes.String
		l.Client = &c
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range loans {
		if err := r.loadItems(ctx, &loans[i]); err != nil {
			return nil, 0, err
		}
	}
	return loans, count, nil
}

func (r *loanRepository) ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]domain.Loan, error) {
	query := `SELECT l.id, l.client_id, l.loan_date, l.due_date, l.returned_date, l.total_amount_cents, l.fine_amount_cents, l.status, l.notes,
	                 c.id, c.name, c.tax_id, c.email, c.phone, c.mobile_phone, c.address, c.city, c.state, c.postal_code, c.client_type, c.active, c.registered_on
	          FROM loans l JOIN clients c ON c.id = l.client_id
	          WHERE l.status = $1 AND l.due_date >= $2 AND l.due_date < $3
	          ORDER BY l.due_date`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, domain.LoanStatusActive, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var l domain.Loan
		var c domain.Client
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ClientID, &l.LoanDate, &l.DueDate, &l.ReturnedDate,
			&l.TotalAmountCents, &l.FineAmountCents, &l.Status, &notes,
			&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.MobilePhone, &c.Address,
			&c.City, &c.State, &c.PostalCode, &c.ClientType, &c.Active, &c.RegisteredOn); err != nil {
			return nil, err
		}
		l.Notes = notes.String
		l.Client = &c
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
