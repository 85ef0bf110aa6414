package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Every event table starts with the columns of eventColumns: a row id, the
// global sequence number and the time the row was written.
func eventColumns(cols ...*schema.Column) []*schema.Column {
	return append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}, cols...)
}

var (
	// QuizSessionsColumns holds one row per archived session.
	QuizSessionsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString, Unique: true},
		&schema.Column{Name: "bank", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "title", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "outcome", Type: field.TypeEnum, Enums: []string{OutcomeCompleted, OutcomeFailed, OutcomeCancelled}},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "total_questions", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "started_at", Type: field.TypeTime},
		&schema.Column{Name: "ended_at", Type: field.TypeTime},
	)
	QuizSessionsTable = &schema.Table{
		Name:       "quiz_sessions",
		Columns:    QuizSessionsColumns,
		PrimaryKey: []*schema.Column{QuizSessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizsession_started_at", Columns: []*schema.Column{QuizSessionsColumns[9]}},
		},
	}

	// AttemptEventsColumns mirrors the session attempt log.
	AttemptEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "question_id", Type: field.TypeString},
		&schema.Column{Name: "kind", Type: field.TypeEnum, Enums: []string{"response", "skip"}},
		&schema.Column{Name: "attempt_number", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "correct", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "response", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "expected", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "time_spent_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "occurred_at", Type: field.TypeTime},
	)
	AttemptEventsTable = &schema.Table{
		Name:       "attempt_events",
		Columns:    AttemptEventsColumns,
		PrimaryKey: []*schema.Column{AttemptEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attemptevent_session_id", Columns: []*schema.Column{AttemptEventsColumns[3]}},
			{Name: "attemptevent_question_id", Columns: []*schema.Column{AttemptEventsColumns[4]}},
		},
	}

	// PhaseSummariesColumns holds the summaries produced when a phase ends.
	PhaseSummariesColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "phase", Type: field.TypeString},
		&schema.Column{Name: "attempted", Type: field.TypeInt},
		&schema.Column{Name: "skipped", Type: field.TypeInt},
		&schema.Column{Name: "correct", Type: field.TypeInt},
		&schema.Column{Name: "incorrect", Type: field.TypeInt},
		&schema.Column{Name: "time_spent_ms", Type: field.TypeInt64},
	)
	PhaseSummariesTable = &schema.Table{
		Name:       "phase_summaries",
		Columns:    PhaseSummariesColumns,
		PrimaryKey: []*schema.Column{PhaseSummariesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "phasesummary_session_id", Columns: []*schema.Column{PhaseSummariesColumns[3]}},
		},
	}

	// LLMRequestEventsColumns records every LLM call for cost tracking.
	LLMRequestEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "cost_usd", Type: field.TypeFloat64, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
	)
	LLMRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMRequestEventsColumns[5]}},
		},
	}

	// Tables holds every table the store migrates.
	Tables = []*schema.Table{
		QuizSessionsTable,
		AttemptEventsTable,
		PhaseSummariesTable,
		LLMRequestEventsTable,
	}
)
