package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_enum_document_status",
		SQL:  `CREATE TYPE document_status AS ENUM ('pending', 'processing', 'done', 'error');`,
	},
	{
		Name: "create_enum_course_type",
		SQL:  `CREATE TYPE course_type AS ENUM ('starter', 'main', 'drink');`,
	},
	{
		Name: "create_table_departments",
		SQL: `CREATE TABLE IF NOT EXISTS departments (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       TEXT        NOT NULL UNIQUE,
  slug       TEXT        NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            UUID            PRIMARY KEY DEFAULT uuid_generate_v4(),
  department_id UUID            NOT NULL REFERENCES departments (id) ON DELETE CASCADE,
  original_name TEXT            NOT NULL,
  filename      TEXT            NOT NULL UNIQUE,
  file_path     TEXT            NOT NULL,
  storage_path  TEXT,
  size          BIGINT          NOT NULL CHECK (size >= 0),
  status        document_status NOT NULL DEFAULT 'pending',
  error_message TEXT,
  uploaded_at   TIMESTAMPTZ     NOT NULL DEFAULT now(),
  processed_at  TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_menus",
		SQL: `CREATE TABLE IF NOT EXISTS menus (
  id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id UUID NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  menu_index  INT  NOT NULL DEFAULT 0,
  name        TEXT NOT NULL,
  fruit       TEXT,
  image_url   TEXT
);`,
	},
	{
		Name: "create_table_menu_nutrition",
		SQL: `CREATE TABLE IF NOT EXISTS menu_nutrition (
  menu_id      UUID PRIMARY KEY REFERENCES menus (id) ON DELETE CASCADE,
  energy_kcal  NUMERIC(10, 2),
  protein_g    NUMERIC(10, 2),
  carbs_g      NUMERIC(10, 2),
  iron_mg      NUMERIC(10, 2),
  vitamin_a_ug NUMERIC(10, 2),
  zinc_mg      NUMERIC(10, 2)
);`,
	},
	{
		Name: "create_table_recipes",
		SQL: `CREATE TABLE IF NOT EXISTS recipes (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name             TEXT        NOT NULL,
  type             course_type NOT NULL,
  ingredients_text TEXT,
  preparation_text TEXT,
  UNIQUE (name, type)
);`,
	},
	{
		Name: "create_table_menu_recipes",
		SQL: `CREATE TABLE IF NOT EXISTS menu_recipes (
  menu_id   UUID        NOT NULL REFERENCES menus (id) ON DELETE CASCADE,
  recipe_id UUID        NOT NULL REFERENCES recipes (id) ON DELETE CASCADE,
  type      course_type NOT NULL,
  PRIMARY KEY (menu_id, type)
);`,
	},
	{
		Name: "create_index_documents_department_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_department_id ON documents (department_id);`,
	},
	{
		Name: "create_index_documents_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (status);`,
	},
	{
		Name: "create_index_menus_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_menus_document_id ON menus (document_id);`,
	},
	{
		Name: "seed_departments",
		SQL: `INSERT INTO departments (name, slug) VALUES
  ('Amazonas', 'amazonas'),
  ('Áncash', 'ancash'),
  ('Apurímac', 'apurimac'),
  ('Arequipa', 'arequipa'),
  ('Ayacucho', 'ayacucho'),
  ('Cajamarca', 'cajamarca'),
  ('Callao', 'callao'),
  ('Cusco', 'cusco'),
  ('Huancavelica', 'huancavelica'),
  ('Huánuco', 'huanuco'),
  ('Ica', 'ica'),
  ('Junín', 'junin'),
  ('La Libertad', 'la-libertad'),
  ('Lambayeque', 'lambayeque'),
  ('Lima', 'lima'),
  ('Loreto', 'loreto'),
  ('Madre de Dios', 'madre-de-dios'),
  ('Moquegua', 'moquegua'),
  ('Pasco', 'pasco'),
  ('Piura', 'piura'),
  ('Puno', 'puno'),
  ('San Martín', 'san-martin'),
  ('Tacna', 'tacna'),
  ('Tumbes', 'tumbes'),
  ('Ucayali', 'ucayali')
ON CONFLICT (slug) DO NOTHING;`,
	},
}

// EnsureMigrated checks if the 'menu_recipes' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.menu_recipes') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
