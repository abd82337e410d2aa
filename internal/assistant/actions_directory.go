package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/pkg/logging"
)

const maxClientSearchRows = 10

// createClientAction registers a new client, rejecting duplicate active
// names.
type createClientAction struct{}

func (createClientAction) Name() ActionName { return ActionCreateClient }

func (createClientAction) Execute(ctx context.Context, q Queries, args Args) (string, error) {
	name, err := args.RequiredString("name")
	if err != nil {
		return "", err
	}

	existing, err := q.FindActiveClientByName(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", domain.Conflict("Client '%s' already exists", name)
	}

	client := domain.Client{
		Name:  name,
		Email: args.String("email"),
		Phone: args.String("phone"),
	}
	if err := q.CreateClient(ctx, &client); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Created client: %s", name), nil
}

// createProviderAction registers a new provider, normalizing courtesy
// titles and deriving a stable display color from the name.
type createProviderAction struct {
	logger *logging.Logger
}

func (createProviderAction) Name() ActionName { return ActionCreateProvider }

func (a createProviderAction) Execute(ctx context.Context, q Queries, args Args) (string, error) {
	name, err := args.RequiredString("name")
	if err != nil {
		return "", err
	}

	finalName, finalTitle, inferredTitle := domain.NormalizeProviderName(name, args.String("title"))

	existing, err := q.FindActiveProviderByName(ctx, finalName)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", domain.Conflict("Provider '%s' already exists", finalName)
	}

	workingHours := args.String("working_hours")
	if workingHours == "" {
		workingHours = domain.DefaultWorkingHours
	} else if _, ok := domain.ParseWorkingHours(workingHours); !ok {
		if a.logger != nil {
			a.logger.Warn("rejecting malformed working hours", "working_hours", workingHours)
		}
		return "", domain.Validation("working hours must look like HH:MM-HH:MM")
	}

	provider := domain.Provider{
		Name:         finalName,
		Title:        finalTitle,
		Specialty:    args.String("specialty"),
		Email:        args.String("email"),
		Phone:        args.String("phone"),
		WorkingHours: workingHours,
		Color:        domain.ColorForName(finalName),
	}
	if err := q.CreateProvider(ctx, &provider); err != nil {
		return "", err
	}

	specialtyText := ""
	if provider.Specialty != "" {
		specialtyText = " - " + provider.Specialty
	}
	return fmt.Sprintf("✅ Created provider: %s (%s%s)", finalName, inferredTitle, specialtyText), nil
}

// searchClientsAction does a bounded case-insensitive substring search on
// client names.
type searchClientsAction struct{}

func (searchClientsAction) Name() ActionName { return ActionSearchClients }

func (searchClientsAction) Execute(ctx context.Context, q Queries, args Args) (string, error) {
	query, err := args.RequiredString("query")
	if err != nil {
		return "", err
	}

	clients, err := q.SearchClients(ctx, query, maxClientSearchRows)
	if err != nil {
		return "", err
	}
	if len(clients) == 0 {
		return fmt.Sprintf("No clients found matching '%s'", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d client(s):\n", len(clients))
	for _, c := range clients {
		fmt.Fprintf(&b, "\n• %s [ID: %s]", c.Name, c.ID)
		if c.Phone != "" {
			b.WriteString(" - " + c.Phone)
		}
		if c.Email != "" {
			b.WriteString(" - " + c.Email)
		}
	}
	return b.String(), nil
}
