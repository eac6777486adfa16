package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/observability"
	"github.com/kitabu/kitabu/internal/ports"
	"github.com/kitabu/kitabu/internal/service/logger"
)

// BudgetUseCase projects budgets and creates programs with their
// materialized budget rows.
type BudgetUseCase struct {
	uow      ports.UnitOfWork
	programs ports.ProgramRepository
	reports  ports.ReportRepository
	log      logger.Logger
	now      func() time.Time
}

// NewBudgetUseCase creates a budget use case.
func NewBudgetUseCase(
	uow ports.UnitOfWork,
	programs ports.ProgramRepository,
	reports ports.ReportRepository,
	log logger.Logger,
) *BudgetUseCase {
	return &BudgetUseCase{
		uow:      uow,
		programs: programs,
		reports:  reports,
		log:      log,
		now:      time.Now,
	}
}

// Project computes a budget projection for a headcount. Pure planning: no
// persistence, no authentication requirement.
func (uc *BudgetUseCase) Project(ctx context.Context, items []domain.TemplateItem, headcount int) (*domain.Projection, error) {
	return domain.ProjectBudget(items, headcount)
}

// CreateProgram persists a program and, when a template is given, the
// budget rows projected from it, under one transaction with a create audit
// event.
func (uc *BudgetUseCase) CreateProgram(ctx context.Context, actorID, name string, headcount int, template []domain.TemplateItem) (*domain.Program, error) {
	program, err := uc.createProgram(ctx, actorID, name, headcount, template)
	observability.RecordOperation("create_program", err)
	return program, err
}

func (uc *BudgetUseCase) createProgram(ctx context.Context, actorID, name string, headcount int, template []domain.TemplateItem) (*domain.Program, error) {
	if actorID == "" {
		return nil, &domain.AuthError{}
	}
	now := uc.now()
	program, err := domain.NewProgram(name, headcount, actorID, now)
	if err != nil {
		return nil, err
	}
	var projection *domain.Projection
	if len(template) > 0 {
		projection, err = domain.ProjectBudget(template, headcount)
		if err != nil {
			return nil, err
		}
	}

	err = uc.uow.Do(ctx, func(r ports.Repositories) error {
		if err := r.Programs.Create(ctx, program); err != nil {
			return err
		}
		if projection != nil {
			items := domain.MaterializeBudget(program.ID, projection, now)
			if err := r.Programs.CreateBudgetItems(ctx, items); err != nil {
				return err
			}
		}
		event, err := domain.NewAuditEvent(actorID, tablePrograms, program.ID,
			domain.AuditActionCreate, "", nil, program, nil, now)
		if err != nil {
			return err
		}
		return r.Audit.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info(ctx, "program created", map[string]interface{}{
		"program_id": program.ID,
		"name":       program.Name,
		"actor_id":   actorID,
	})
	return program, nil
}

// GetProgram retrieves a program.
func (uc *BudgetUseCase) GetProgram(ctx context.Context, id string) (*domain.Program, error) {
	return uc.programs.FindByID(ctx, id)
}

// ListBudgetItems retrieves the persisted budget rows of a program.
func (uc *BudgetUseCase) ListBudgetItems(ctx context.Context, programID string) ([]*domain.BudgetItem, error) {
	if _, err := uc.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}
	return uc.programs.ListBudgetItems(ctx, programID)
}

// ProgramActuals returns budget versus actual spend for a program, derived
// from ledger rows. Read-only.
func (uc *BudgetUseCase) ProgramActuals(ctx context.Context, programID string) (*ports.ProgramActuals, error) {
	if _, err := uc.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}
	return uc.reports.ProgramActuals(ctx, programID)
}

// AccountBalance returns the derived base-currency balance of a bank
// account over its active entries. Read-only.
func (uc *BudgetUseCase) AccountBalance(ctx context.Context, bankAccountID string) (decimal.Decimal, error) {
	return uc.reports.AccountBalance(ctx, bankAccountID)
}
