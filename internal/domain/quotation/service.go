package quotation

import (
	"context"
	"fmt"
	"time"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/core/sequence"
	"fabriq/internal/core/tx"
	"fabriq/internal/core/types"
	"fabriq/internal/domain"
	"fabriq/internal/domain/invoice"
	"fabriq/internal/domain/numbering"
	"fabriq/pkg/logger"
)

// Service drives the quotation lifecycle: creation with number assignment
// and the status transitions, including the two-step transition to
// invoiced (allocate invoice number, generate document, commit).
type Service struct {
	repo      Repository
	allocator sequence.Allocator
	generator invoice.Generator
	txManager tx.Manager
	profile   invoice.Profile
	audit     AuditRecorder // optional
	hooks     *domain.HookRegistry[*Quotation]

	// now is swapped in tests for deterministic identifiers.
	now func() time.Time
}

// NewService creates the quotation service.
func NewService(
	repo Repository,
	allocator sequence.Allocator,
	generator invoice.Generator,
	txManager tx.Manager,
	profile invoice.Profile,
) *Service {
	return &Service{
		repo:      repo,
		allocator: allocator,
		generator: generator,
		txManager: txManager,
		profile:   profile,
		hooks:     domain.NewHookRegistry[*Quotation](),
		now:       time.Now,
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Quotation] {
	return s.hooks
}

// SetAuditRecorder attaches an optional audit sink.
func (s *Service) SetAuditRecorder(a AuditRecorder) {
	s.audit = a
}

// Create assigns the quotation its identifier and persists it.
// The number is derived from a freshly allocated year-scoped counter and
// the client name snapshot; it never changes afterwards.
func (s *Service) Create(ctx context.Context, q *Quotation) error {
	if err := s.hooks.RunBeforeCreate(ctx, q); err != nil {
		return err
	}

	if q.Date.IsZero() {
		q.Date = s.now().UTC()
	}
	q.Status = StatusIssued
	q.InvoiceNumber = ""
	q.RecalculateTotal()

	if err := q.Validate(ctx); err != nil {
		return err
	}

	// Initials are validated before a number is consumed, so a bad
	// client name never burns a counter value.
	if _, err := numbering.Initials(q.ClientName); err != nil {
		return err
	}

	seq, err := s.allocator.Allocate(ctx, sequence.KindQuotation, q.Date.Year())
	if err != nil {
		return err
	}

	number, err := numbering.Format(sequence.KindQuotation, q.Date, seq, q.ClientName)
	if err != nil {
		return err
	}
	q.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, q); err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, q); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "quotation created",
		"id", q.ID,
		"number", q.Number,
		"client", q.ClientName)

	return nil
}

// GetByID retrieves a quotation.
func (s *Service) GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.repo.GetByID(ctx, quotationID)
}

// GetByNumber retrieves a quotation by its document number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	return s.repo.GetByNumber(ctx, number)
}

// List retrieves quotations with filtering and pagination.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quotation], error) {
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultListFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// Update persists cost and comment changes on a quotation that has not
// left its editable states. Number, client snapshot and status are not
// touched here; transitions have their own entry points.
func (s *Service) Update(ctx context.Context, q *Quotation) error {
	if !q.Status.Editable() {
		return apperror.NewValidation("quotation can no longer be edited").
			WithDetail("status", string(q.Status))
	}

	if err := s.hooks.RunBeforeUpdate(ctx, q); err != nil {
		return err
	}

	q.RecalculateTotal()
	if err := q.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// The stored state decides editability, not the copy the caller
		// handed in.
		current, err := s.repo.GetByID(ctx, q.ID)
		if err != nil {
			return err
		}
		if !current.Status.Editable() {
			return apperror.NewValidation("quotation can no longer be edited").
				WithDetail("status", string(current.Status))
		}
		return s.repo.Update(ctx, q)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterUpdate(ctx, q); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}

	return nil
}

// Delete soft-deletes a quotation.
func (s *Service) Delete(ctx context.Context, quotationID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, quotationID)
	})
}

// Accept moves a quotation to accepted.
func (s *Service) Accept(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.transition(ctx, quotationID, StatusAccepted)
}

// Cancel moves a quotation to the terminal cancelled state.
func (s *Service) Cancel(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.transition(ctx, quotationID, StatusCancelled)
}

// MarkPaid moves an invoiced quotation to payment received.
func (s *Service) MarkPaid(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.transition(ctx, quotationID, StatusPaymentReceived)
}

// transition performs a plain status change guarded by the transition
// table. Invoice is not handled here: it has side effects.
func (s *Service) transition(ctx context.Context, quotationID id.ID, target Status) (*Quotation, error) {
	var result *Quotation

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.repo.GetByID(ctx, quotationID)
		if err != nil {
			return err
		}

		from := q.Status
		if err := checkTransition(from, target); err != nil {
			return err
		}

		q.Status = target
		if err := s.repo.Update(ctx, q); err != nil {
			return fmt.Errorf("update quotation: %w", err)
		}

		s.recordTransition(ctx, q, from, target)
		result = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation status changed",
		"id", result.ID,
		"number", result.Number,
		"status", string(result.Status))

	return result, nil
}

// Invoice turns a quotation into a billed record. Two steps, both of which
// can fail independently:
//
//  1. Allocate an invoice number. On failure nothing changed.
//  2. Generate the invoice document with that number. On failure the
//     number is burned (allocated, never attached) and the quotation
//     stays in its current state. A retry gets a fresh number.
//
// Only when both succeed is the record updated, atomically: invoice number
// and invoiced status together.
func (s *Service) Invoice(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	q, err := s.repo.GetByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}

	from := q.Status
	if err := checkTransition(from, StatusInvoiced); err != nil {
		return nil, err
	}
	if err := q.CanInvoice(); err != nil {
		return nil, err
	}

	invoiceDate := s.now().UTC()
	seq, err := s.allocator.Allocate(ctx, sequence.KindInvoice, invoiceDate.Year())
	if err != nil {
		return nil, err
	}

	invoiceNumber, err := numbering.Format(sequence.KindInvoice, invoiceDate, seq, q.ClientName)
	if err != nil {
		return nil, err
	}

	artifact, err := s.generator.Generate(ctx, s.buildRequest(q, invoiceNumber))
	if err != nil {
		s.recordBurnedNumber(ctx, q, invoiceNumber, err)
		logger.Error(ctx, "invoice generation failed, number burned",
			"id", q.ID,
			"quotation", q.Number,
			"invoice", invoiceNumber,
			"error", err)
		return nil, apperror.NewGenerationFailed(invoiceNumber, err)
	}

	var result *Quotation
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Re-read inside the transaction: the record may have moved
		// while the document was rendering.
		current, err := s.repo.GetByID(ctx, quotationID)
		if err != nil {
			return err
		}
		if err := checkTransition(current.Status, StatusInvoiced); err != nil {
			return err
		}

		current.InvoiceNumber = invoiceNumber
		current.Status = StatusInvoiced
		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("update quotation: %w", err)
		}

		s.recordTransition(ctx, current, from, StatusInvoiced)
		result = current
		return nil
	})
	if err != nil {
		// The document exists but the record does not reference it.
		// The number is burned like any other generation-path failure.
		s.recordBurnedNumber(ctx, q, invoiceNumber, err)
		return nil, err
	}

	logger.Info(ctx, "quotation invoiced",
		"id", result.ID,
		"quotation", result.Number,
		"invoice", result.InvoiceNumber,
		"artifact", artifact)

	return result, nil
}

// buildRequest snapshots the quotation into a generator request. The four
// cost components become one line each; zero-amount lines are dropped.
func (s *Service) buildRequest(q *Quotation, invoiceNumber string) invoice.Request {
	type component struct {
		description string
		amount      types.Money
	}
	components := []component{
		{"Design work", q.DesignCost},
		{"3D printing", q.PrintingCost},
		{"Handling and finishing", q.HandlingCost},
		{"Material", q.MaterialCost.Add(q.Margin)},
	}

	lines := make([]invoice.Line, 0, len(components))
	for _, c := range components {
		if !c.amount.IsPositive() {
			continue
		}
		lines = append(lines, invoice.Line{
			Description: c.description,
			Quantity:    types.NewMoney(1),
			Unit:        "pc",
			UnitPrice:   c.amount,
		})
	}

	return invoice.Request{
		InvoiceNumber:   invoiceNumber,
		QuotationNumber: q.Number,
		Debtor:          invoice.Party{Name: q.ClientName},
		Lines:           lines,
		Total:           q.Total,
		Profile:         s.profile,
	}
}

func checkTransition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return apperror.NewInvalidTransition(string(from), string(to))
	}
	return nil
}

func (s *Service) recordTransition(ctx context.Context, q *Quotation, from, to Status) {
	if s.audit == nil {
		return
	}
	s.audit.RecordTransition(ctx, q.ID, q.Number, from, to)
}

func (s *Service) recordBurnedNumber(ctx context.Context, q *Quotation, number string, reason error) {
	if s.audit == nil {
		return
	}
	s.audit.RecordBurnedNumber(ctx, q.ID, number, reason)
}
