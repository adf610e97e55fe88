package scene

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists scenes and simulation run summaries in sqlite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the sqlite database at path and
// brings its schema up to date.
func OpenStore(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"+
		"&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open scene db: %w", err)
	}
	s, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an open database and runs the embedded migrations.
func NewStore(db *sql.DB) (*Store, error) {
	if err := migrateUp(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the applied migration version.
func (s *Store) SchemaVersion() (uint, bool, error) {
	return migrateVersion(s.db)
}

// InsertScene stores a scene with its boxes and ledges.
// Empty scene and ledge IDs are filled in with new UUIDs.
func (s *Store) InsertScene(sc *Scene) error {
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("insert scene: %w", err)
	}
	if sc.SceneID == "" {
		sc.SceneID = uuid.New().String()
	}
	if sc.CreatedAtNs == 0 {
		sc.CreatedAtNs = time.Now().UnixNano()
	}
	for i := range sc.Ledges {
		if sc.Ledges[i].ID == "" {
			sc.Ledges[i].ID = uuid.New().String()
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert scene: %w", err)
	}
	defer tx.Rollback()

	var spawnX, spawnY, spawnZ interface{}
	if sc.Spawn != nil {
		spawnX, spawnY, spawnZ = sc.Spawn[0], sc.Spawn[1], sc.Spawn[2]
	}
	_, err = tx.Exec(`
		INSERT INTO scenes (
			scene_id, name, description, spawn_x, spawn_y, spawn_z,
			trigger_radius, created_at_ns, updated_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sc.SceneID,
		sc.Name,
		nullString(sc.Description),
		spawnX, spawnY, spawnZ,
		nullFloat64(sc.TriggerRadius),
		sc.CreatedAtNs,
		nullInt64(sc.UpdatedAtNs),
	)
	if err != nil {
		return fmt.Errorf("insert scene: %w", err)
	}

	for i, b := range sc.Boxes {
		layer := b.Layer
		if layer == 0 {
			layer = 1
		}
		_, err = tx.Exec(`
			INSERT INTO scene_boxes (
				scene_id, seq, name, min_x, min_y, min_z, max_x, max_y, max_z, layer
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sc.SceneID, i, nullString(b.Name),
			b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2], layer)
		if err != nil {
			return fmt.Errorf("insert scene box %d: %w", i, err)
		}
	}

	// Ledges are stored by their endpoints whatever form they were
	// authored in.
	for i, l := range sc.Ledges {
		built := l.Build()
		start, end := built.Start, built.End()
		_, err = tx.Exec(`
			INSERT INTO scene_ledges (
				scene_id, ledge_id, seq, start_x, start_y, start_z, end_x, end_y, end_z
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sc.SceneID, built.ID, i, start.X, start.Y, start.Z, end.X, end.Y, end.Z)
		if err != nil {
			return fmt.Errorf("insert scene ledge %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert scene: %w", err)
	}
	return nil
}

// GetScene retrieves a scene by ID. Ledges come back in endpoint form.
func (s *Store) GetScene(sceneID string) (*Scene, error) {
	var sc Scene
	var description sql.NullString
	var spawnX, spawnY, spawnZ, triggerRadius sql.NullFloat64
	var updatedAtNs sql.NullInt64

	err := s.db.QueryRow(`
		SELECT scene_id, name, description, spawn_x, spawn_y, spawn_z,
		       trigger_radius, created_at_ns, updated_at_ns
		FROM scenes
		WHERE scene_id = ?
	`, sceneID).Scan(
		&sc.SceneID,
		&sc.Name,
		&description,
		&spawnX, &spawnY, &spawnZ,
		&triggerRadius,
		&sc.CreatedAtNs,
		&updatedAtNs,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scene not found: %s", sceneID)
	}
	if err != nil {
		return nil, fmt.Errorf("get scene: %w", err)
	}

	if description.Valid {
		sc.Description = description.String
	}
	if spawnX.Valid && spawnY.Valid && spawnZ.Valid {
		sc.Spawn = &Vec3{spawnX.Float64, spawnY.Float64, spawnZ.Float64}
	}
	if triggerRadius.Valid {
		sc.TriggerRadius = triggerRadius.Float64
	}
	if updatedAtNs.Valid {
		v := updatedAtNs.Int64
		sc.UpdatedAtNs = &v
	}

	if sc.Boxes, err = s.sceneBoxes(sceneID); err != nil {
		return nil, err
	}
	if sc.Ledges, err = s.sceneLedges(sceneID); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Store) sceneBoxes(sceneID string) ([]Box, error) {
	rows, err := s.db.Query(`
		SELECT name, min_x, min_y, min_z, max_x, max_y, max_z, layer
		FROM scene_boxes
		WHERE scene_id = ?
		ORDER BY seq
	`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("list scene boxes: %w", err)
	}
	defer rows.Close()

	boxes := []Box{}
	for rows.Next() {
		var b Box
		var name sql.NullString
		if err := rows.Scan(&name, &b.Min[0], &b.Min[1], &b.Min[2], &b.Max[0], &b.Max[1], &b.Max[2], &b.Layer); err != nil {
			return nil, fmt.Errorf("scan scene box: %w", err)
		}
		b.Name = name.String
		boxes = append(boxes, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scene boxes rows: %w", err)
	}
	return boxes, nil
}

func (s *Store) sceneLedges(sceneID string) ([]Ledge, error) {
	rows, err := s.db.Query(`
		SELECT ledge_id, start_x, start_y, start_z, end_x, end_y, end_z
		FROM scene_ledges
		WHERE scene_id = ?
		ORDER BY seq
	`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("list scene ledges: %w", err)
	}
	defer rows.Close()

	ledges := []Ledge{}
	for rows.Next() {
		var l Ledge
		var start, end Vec3
		if err := rows.Scan(&l.ID, &start[0], &start[1], &start[2], &end[0], &end[1], &end[2]); err != nil {
			return nil, fmt.Errorf("scan scene ledge: %w", err)
		}
		l.Start, l.End = &start, &end
		ledges = append(ledges, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scene ledges rows: %w", err)
	}
	return ledges, nil
}

// SceneSummary is a scene row without its geometry.
type SceneSummary struct {
	SceneID     string `json:"scene_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Ledges      int    `json:"ledges"`
	CreatedAtNs int64  `json:"created_at_ns"`
}

// ListScenes returns every scene, newest first.
func (s *Store) ListScenes() ([]SceneSummary, error) {
	rows, err := s.db.Query(`
		SELECT s.scene_id, s.name, s.description, s.created_at_ns,
		       (SELECT COUNT(*) FROM scene_ledges l WHERE l.scene_id = s.scene_id)
		FROM scenes s
		ORDER BY s.created_at_ns DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var scenes []SceneSummary
	for rows.Next() {
		var sum SceneSummary
		var description sql.NullString
		if err := rows.Scan(&sum.SceneID, &sum.Name, &description, &sum.CreatedAtNs, &sum.Ledges); err != nil {
			return nil, fmt.Errorf("scan scene row: %w", err)
		}
		sum.Description = description.String
		scenes = append(scenes, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenes rows: %w", err)
	}
	return scenes, nil
}

// DeleteScene deletes a scene with its geometry and runs.
func (s *Store) DeleteScene(sceneID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete scene: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"scene_runs", "scene_ledges", "scene_boxes"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE scene_id = ?`, sceneID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	result, err := tx.Exec(`DELETE FROM scenes WHERE scene_id = ?`, sceneID)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scene not found: %s", sceneID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete scene: %w", err)
	}
	return nil
}

// Run is the summary of one simulation run over a stored scene.
type Run struct {
	RunID       string          `json:"run_id"`
	SceneID     string          `json:"scene_id"`
	Frames      int             `json:"frames"`
	DtSecs      float64         `json:"dt_secs"`
	Final       Vec3            `json:"final"`
	FinalState  string          `json:"final_state"`
	Snaps       int             `json:"snaps"`
	Falls       int             `json:"falls"`
	ParamsJSON  json.RawMessage `json:"params_json,omitempty"`
	CreatedAtNs int64           `json:"created_at_ns"`
}

// InsertRun records a run. An empty RunID gets a new UUID.
func (s *Store) InsertRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAtNs == 0 {
		run.CreatedAtNs = time.Now().UnixNano()
	}

	_, err := s.db.Exec(`
		INSERT INTO scene_runs (
			run_id, scene_id, frames, dt_secs, final_x, final_y, final_z,
			final_state, snaps, falls, params_json, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID, run.SceneID, run.Frames, run.DtSecs,
		run.Final[0], run.Final[1], run.Final[2],
		run.FinalState, run.Snaps, run.Falls,
		nullString(string(run.ParamsJSON)),
		run.CreatedAtNs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the runs recorded for a scene, newest first.
func (s *Store) ListRuns(sceneID string) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, scene_id, frames, dt_secs, final_x, final_y, final_z,
		       final_state, snaps, falls, params_json, created_at_ns
		FROM scene_runs
		WHERE scene_id = ?
		ORDER BY created_at_ns DESC
	`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var params sql.NullString
		err := rows.Scan(
			&r.RunID, &r.SceneID, &r.Frames, &r.DtSecs,
			&r.Final[0], &r.Final[1], &r.Final[2],
			&r.FinalState, &r.Snaps, &r.Falls, &params, &r.CreatedAtNs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if params.Valid && params.String != "" {
			r.ParamsJSON = json.RawMessage(params.String)
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs rows: %w", err)
	}
	return runs, nil
}

// Helper functions for nullable values

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat64(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}

func nullInt64(i *int64) interface{} {
	if i == nil {
		return nil
	}
	return *i
}
