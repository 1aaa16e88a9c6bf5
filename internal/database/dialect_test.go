package database

import "testing"

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT 1",
			want:  "SELECT 1",
		},
		{
			name:  "single placeholder",
			query: "SELECT * FROM users WHERE id = ?",
			want:  "SELECT * FROM users WHERE id = $1",
		},
		{
			name:  "multiple placeholders",
			query: "UPDATE invitations SET status = ?, updated_at = ? WHERE token = ? AND status = ?",
			want:  "UPDATE invitations SET status = $1, updated_at = $2 WHERE token = $3 AND status = $4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritePlaceholdersToNumbered(tt.query); got != tt.want {
				t.Errorf("rewritePlaceholdersToNumbered() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInsertIgnoreQuery(t *testing.T) {
	columns := []string{"project_id", "user_id", "role"}
	conflict := []string{"project_id", "user_id"}

	t.Run("sqlite", func(t *testing.T) {
		got := NewSQLiteDialect().InsertIgnoreQuery("project_members", columns, conflict)
		want := "INSERT INTO project_members (project_id, user_id, role) VALUES (?, ?, ?) ON CONFLICT (project_id, user_id) DO NOTHING"
		if got != want {
			t.Errorf("sqlite query = %q, want %q", got, want)
		}
	})

	t.Run("postgres", func(t *testing.T) {
		d := NewPostgresDialect()
		got := d.RewriteQuery(d.InsertIgnoreQuery("project_members", columns, conflict))
		want := "INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, $3) ON CONFLICT (project_id, user_id) DO NOTHING"
		if got != want {
			t.Errorf("postgres query = %q, want %q", got, want)
		}
	})

	t.Run("mysql", func(t *testing.T) {
		got := NewMySQLDialect().InsertIgnoreQuery("project_members", columns, conflict)
		want := "INSERT IGNORE INTO project_members (project_id, user_id, role) VALUES (?, ?, ?)"
		if got != want {
			t.Errorf("mysql query = %q, want %q", got, want)
		}
	})
}

func TestDialectDriverNames(t *testing.T) {
	if got := NewSQLiteDialect().DriverName(); got != "sqlite3" {
		t.Errorf("sqlite driver = %q", got)
	}
	if got := NewPostgresDialect().DriverName(); got != "postgres" {
		t.Errorf("postgres driver = %q", got)
	}
	if got := NewMySQLDialect().DriverName(); got != "mysql" {
		t.Errorf("mysql driver = %q", got)
	}
}
