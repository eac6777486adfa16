package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/ports"
)

func testTemplate() []domain.TemplateItem {
	return []domain.TemplateItem{
		{Name: "Venue", Kind: domain.BudgetItemFixed, UnitPrice: dec("200"), CurrencyCode: "USD", ExchangeRate: dec("1")},
		{Name: "Meals", Kind: domain.BudgetItemVariable, PeoplePerUnit: 1, UnitPrice: dec("5"), CurrencyCode: "USD", ExchangeRate: dec("1")},
	}
}

func TestProject(t *testing.T) {
	f := newFixture()

	projection, err := f.budget.Project(context.Background(), testTemplate(), 10)
	require.NoError(t, err)
	assert.True(t, projection.TotalBase.Equal(dec("250")))
	assert.Empty(t, f.audit.events, "projection is pure planning, nothing persisted")
}

func TestCreateProgram(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	program, err := f.budget.CreateProgram(ctx, "actor-1", "Winter Drive", 10, testTemplate())
	require.NoError(t, err)

	stored, err := f.budget.GetProgram(ctx, program.ID)
	require.NoError(t, err)
	assert.Equal(t, "Winter Drive", stored.Name)

	items, err := f.budget.ListBudgetItems(ctx, program.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].Units)
	assert.Equal(t, int64(10), items[1].Units)

	events := f.audit.forRecord("programs", program.ID)
	require.Len(t, events, 1)
	assert.Equal(t, domain.AuditActionCreate, events[0].Action)
}

func TestCreateProgram_WithoutTemplate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	program, err := f.budget.CreateProgram(ctx, "actor-1", "Ad-hoc Relief", 0, nil)
	require.NoError(t, err)

	items, err := f.budget.ListBudgetItems(ctx, program.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateProgram_RequiresActor(t *testing.T) {
	f := newFixture()

	_, err := f.budget.CreateProgram(context.Background(), "", "Winter Drive", 10, nil)
	assert.IsType(t, &domain.AuthError{}, err)
}

func TestCreateProgram_InvalidTemplate(t *testing.T) {
	f := newFixture()

	_, err := f.budget.CreateProgram(context.Background(), "actor-1", "Winter Drive", 10, []domain.TemplateItem{
		{Name: "Meals", Kind: domain.BudgetItemVariable, PeoplePerUnit: 0, UnitPrice: dec("5"), CurrencyCode: "USD", ExchangeRate: dec("1")},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.programs.programs, "invalid template must not create the program")
}

func TestProgramActuals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	program, err := f.budget.CreateProgram(ctx, "actor-1", "Winter Drive", 10, testTemplate())
	require.NoError(t, err)

	f.reports.actuals = &ports.ProgramActuals{
		ProgramID:     program.ID,
		BudgetBase:    dec("250"),
		ExpensesBase:  dec("80"),
		ConsumedBase:  dec("40"),
		RemainingBase: dec("130"),
	}

	actuals, err := f.budget.ProgramActuals(ctx, program.ID)
	require.NoError(t, err)
	assert.True(t, actuals.RemainingBase.Equal(dec("130")))
}

func TestProgramActuals_UnknownProgram(t *testing.T) {
	f := newFixture()

	_, err := f.budget.ProgramActuals(context.Background(), "missing")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAccountBalance(t *testing.T) {
	f := newFixture()
	f.reports.balance = dec("1420.50")

	balance, err := f.budget.AccountBalance(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("1420.50")))
}
