package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	eventsTable     = "events"
	challengesTable = "challenge_results"
	learnersTable   = "learners"

	colID        = "id"
	colSequence  = "sequence"
	colTimestamp = "timestamp"
	colName      = "name"
	colModel     = "model"
	colLearner   = "learner"
	colSession   = "session_id"
	colPayload   = "payload"
	colSynced    = "synced"
	colScore     = "score"
	colAnswered  = "answered"
	colCorrect   = "correct"
	colPolicy    = "policy"
	colLastSeen  = "last_seen"
)

var (
	// EventsTable is the append-only analytics log. Timestamps are unix
	// milliseconds.
	EventsTable = schema.NewTable(eventsTable).
			AddPrimary(&schema.Column{Name: colID, Type: field.TypeInt64, Increment: true}).
			AddColumn(&schema.Column{Name: colSequence, Type: field.TypeInt64, Unique: true}).
			AddColumn(&schema.Column{Name: colTimestamp, Type: field.TypeInt64}).
			AddColumn(&schema.Column{Name: colName, Type: field.TypeString}).
			AddColumn(&schema.Column{Name: colModel, Type: field.TypeString, Default: ""}).
			AddColumn(&schema.Column{Name: colLearner, Type: field.TypeString, Default: ""}).
			AddColumn(&schema.Column{Name: colSession, Type: field.TypeString, Default: ""}).
			AddColumn(&schema.Column{Name: colPayload, Type: field.TypeJSON, Nullable: true}).
			AddColumn(&schema.Column{Name: colSynced, Type: field.TypeBool, Default: false}).
			AddIndex("event_name", false, []string{colName}).
			AddIndex("event_synced", false, []string{colSynced}).
			AddIndex("event_timestamp", false, []string{colTimestamp})

	// ChallengesTable holds one row per finished or abandoned challenge run.
	ChallengesTable = schema.NewTable(challengesTable).
			AddPrimary(&schema.Column{Name: colID, Type: field.TypeInt64, Increment: true}).
			AddColumn(&schema.Column{Name: colTimestamp, Type: field.TypeInt64}).
			AddColumn(&schema.Column{Name: colModel, Type: field.TypeString}).
			AddColumn(&schema.Column{Name: colLearner, Type: field.TypeString, Default: ""}).
			AddColumn(&schema.Column{Name: colSession, Type: field.TypeString, Default: ""}).
			AddColumn(&schema.Column{Name: colPolicy, Type: field.TypeString, Default: ""}).
			AddColumn(&schema.Column{Name: colScore, Type: field.TypeInt}).
			AddColumn(&schema.Column{Name: colAnswered, Type: field.TypeInt}).
			AddColumn(&schema.Column{Name: colCorrect, Type: field.TypeInt}).
			AddIndex("challenge_model_score", false, []string{colModel, colScore})

	// LearnersTable remembers names entered on the welcome screen.
	LearnersTable = schema.NewTable(learnersTable).
			AddPrimary(&schema.Column{Name: colID, Type: field.TypeInt64, Increment: true}).
			AddColumn(&schema.Column{Name: colName, Type: field.TypeString, Unique: true}).
			AddColumn(&schema.Column{Name: colLastSeen, Type: field.TypeInt64})

	// Tables is every table the store migrates.
	Tables = []*schema.Table{EventsTable, ChallengesTable, LearnersTable}
)
