package assistant

// ToolParam describes one argument of a tool declaration.
type ToolParam struct {
	Name        string
	Type        string // "string" or "number"
	Description string
	Required    bool
}

// ToolDecl is a provider-neutral function declaration. The Gemini client
// translates these into its own schema types; the simulated client ignores
// them.
type ToolDecl struct {
	Name        ActionName
	Description string
	Params      []ToolParam
}

// SchedulingTools returns the declarations for every registered action, in
// a stable order. The set is part of the static instruction payload, so
// changing it invalidates existing instruction caches.
func SchedulingTools() []ToolDecl {
	return []ToolDecl{
		{
			Name:        ActionCreateAppointment,
			Description: "Book a new appointment for a client with a provider (doctor/staff). Use IDs from the context.",
			Params: []ToolParam{
				{Name: "provider_id", Type: "string", Description: "The provider's ID (UUID) from the PROVIDERS list", Required: true},
				{Name: "client_id", Type: "string", Description: "The client's ID (UUID) from the CLIENTS list", Required: true},
				{Name: "service_id", Type: "string", Description: "Optional service ID from the SERVICES list; sets the price"},
				{Name: "date", Type: "string", Description: "Appointment date (YYYY-MM-DD)", Required: true},
				{Name: "start_time", Type: "string", Description: "Start time (HH:MM, 24-hour format)", Required: true},
				{Name: "end_time", Type: "string", Description: "End time (HH:MM, 24-hour format)", Required: true},
				{Name: "notes", Type: "string", Description: "Optional notes"},
			},
		},
		{
			Name:        ActionGetAppointments,
			Description: "Get appointments, optionally filtered by provider, client, or date.",
			Params: []ToolParam{
				{Name: "provider_id", Type: "string", Description: "Filter by provider ID"},
				{Name: "client_id", Type: "string", Description: "Filter by client ID"},
				{Name: "date", Type: "string", Description: "Filter by date (YYYY-MM-DD)"},
			},
		},
		{
			Name:        ActionCheckAvailability,
			Description: "Check a provider's free hours per day for the week starting at a date.",
			Params: []ToolParam{
				{Name: "provider_id", Type: "string", Description: "Provider ID to check", Required: true},
				{Name: "date", Type: "string", Description: "Starting date (YYYY-MM-DD)", Required: true},
			},
		},
		{
			Name:        ActionGetProviderSchedule,
			Description: "Get a specific provider's full schedule for a date.",
			Params: []ToolParam{
				{Name: "provider_id", Type: "string", Description: "Provider ID", Required: true},
				{Name: "date", Type: "string", Description: "Date (YYYY-MM-DD)", Required: true},
			},
		},
		{
			Name:        ActionCancelAppointment,
			Description: "Cancel an existing appointment by its ID.",
			Params: []ToolParam{
				{Name: "appointment_id", Type: "string", Description: "The appointment ID to cancel", Required: true},
			},
		},
		{
			Name:        ActionCreateClient,
			Description: "Create a new client in the system.",
			Params: []ToolParam{
				{Name: "name", Type: "string", Description: "Client's full name", Required: true},
				{Name: "phone", Type: "string", Description: "Client's phone number"},
				{Name: "email", Type: "string", Description: "Client's email address"},
			},
		},
		{
			Name:        ActionCreateProvider,
			Description: "Create a new provider (doctor/staff member) in the system.",
			Params: []ToolParam{
				{Name: "name", Type: "string", Description: "Provider's name, may include a courtesy title like Dr.", Required: true},
				{Name: "title", Type: "string", Description: "Professional title, e.g. Doctor"},
				{Name: "specialty", Type: "string", Description: "Provider's specialty"},
				{Name: "email", Type: "string", Description: "Provider's email address"},
				{Name: "phone", Type: "string", Description: "Provider's phone number"},
				{Name: "working_hours", Type: "string", Description: "Daily working hours (HH:MM-HH:MM)"},
			},
		},
		{
			Name:        ActionSearchClients,
			Description: "Search for existing clients by name.",
			Params: []ToolParam{
				{Name: "query", Type: "string", Description: "Name fragment to search for", Required: true},
			},
		},
	}
}
