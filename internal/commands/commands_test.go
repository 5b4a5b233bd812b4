package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plan-annotator/internal/common/config"
	"plan-annotator/internal/geometry"
	"plan-annotator/internal/imageref"
	"plan-annotator/internal/models"
	"plan-annotator/internal/repository"
	"plan-annotator/internal/service"
	"plan-annotator/internal/store"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newTestApp(t *testing.T) *App {
	t.Helper()
	images := imageref.NewIngestor(imageref.NewBlobStorage(t.TempDir()), imageref.Options{MaxBytes: 1 << 20, Inline: true}, zap.NewNop())
	return NewApp(store.NewMemoryKV(), images, zap.NewNop())
}

func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

const towerDraft = `
name: Tower A
floorCount: 2
floors:
  - floorNumber: 1
    apartments:
      - {area: 55}
      - {area: 61.5}
  - floorNumber: 2
    apartments:
      - {area: 80}
`

func createTower(t *testing.T, app *App) string {
	t.Helper()
	dir := t.TempDir()
	draft := writeFile(t, dir, "tower.yaml", []byte(towerDraft))
	facade := writeFile(t, dir, "facade.png", pngBytes)
	plan := writeFile(t, dir, "f1.png", pngBytes)

	out, err := run(t, app, "building", "save", "-f", draft, "--image", facade, "--floor-plan", "1="+plan)
	require.NoError(t, err)
	return strings.TrimSpace(out)
}

func TestBuildingCommands(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	id := createTower(t, app)
	require.True(t, strings.HasPrefix(id, "building-"))

	b, err := app.Buildings.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.ImageURL, "data:image/png;base64,"))
	assert.NotEmpty(t, b.Floors[0].FloorPlanImageURL)

	out, err := run(t, app, "building", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Tower A")

	_, err = run(t, app, "building", "status", id, "1", id+"-f1-a1", "In negotiation")
	require.NoError(t, err)
	_, err = run(t, app, "building", "move", id, "1", id+"-f1-a2", "12.5", "40")
	require.NoError(t, err)

	b, err = app.Buildings.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInNegotiation, b.Floors[0].Apartments[0].Status)
	assert.Equal(t, 1, b.Floors[0].AvailableCount)
	assert.Equal(t, &geometry.Point{X: 12.5, Y: 40}, b.Floors[0].Apartments[1].DotPosition)

	_, err = run(t, app, "building", "status", id, "1", id+"-f1-a1", "rented")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	out, err = run(t, app, "building", "draft", id)
	require.NoError(t, err)
	assert.Contains(t, out, "name: Tower A")

	out, err = run(t, app, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Floor 1")

	_, err = run(t, app, "building", "delete", id)
	require.NoError(t, err)
	_, err = run(t, app, "building", "show", id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDuplicateBuildingNameRejected(t *testing.T) {
	app := newTestApp(t)
	createTower(t, app)

	dir := t.TempDir()
	draft := writeFile(t, dir, "dup.yaml", []byte(strings.Replace(towerDraft, "Tower A", "  tower A", 1)))
	facade := writeFile(t, dir, "facade.png", pngBytes)
	_, err := run(t, app, "building", "save", "-f", draft, "--image", facade)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "name already in use")
}

func TestAnnotateBoundariesAppliesToBuilding(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	id := createTower(t, app)

	script := writeFile(t, t.TempDir(), "bounds.yaml", []byte(`
tool: boundaries
image: {left: 0, top: 0, width: 100, height: 1000}
events:
  - {type: click, y: 180}
  - {type: done}
`))
	out, err := run(t, app, "annotate", script, "--building", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"complete": true`)

	b, err := app.Buildings.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, geometry.BoundaryList{82, 100}, b.FloorBoundsPercent)

	out, err = run(t, app, "overlay", "building", id)
	require.NoError(t, err)
	assert.Contains(t, out, `y="18" width="100" height="82"`)
}

func TestAnnotateFloorRectsSavesBuilding(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	id := createTower(t, app)

	script := writeFile(t, t.TempDir(), "rects.yaml", []byte(`
tool: floor-rects
image: {left: 0, top: 0, width: 100, height: 100}
events:
  - {type: down, x: 10, y: 60}
  - {type: move, x: 90, y: 90}
  - {type: up}
  - {type: down, x: 10, y: 20}
  - {type: move, x: 90, y: 55}
  - {type: up}
`))
	out, err := run(t, app, "annotate", script, "--building", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"complete": true`)

	b, err := app.Buildings.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, b.FloorBoundsPercent)
	require.NotNil(t, b.Floors[0].AreaPercent)
	require.NotNil(t, b.Floors[1].AreaPercent)
	ground, top := *b.Floors[0].AreaPercent, *b.Floors[1].AreaPercent
	assert.InDeltaSlice(t, []float64{10, 60, 80, 30}, []float64{ground.X, ground.Y, ground.Width, ground.Height}, 1e-9)
	assert.InDeltaSlice(t, []float64{10, 20, 80, 35}, []float64{top.X, top.Y, top.Width, top.Height}, 1e-9)
	assert.Len(t, b.Floors[0].Apartments, 2)
	assert.Equal(t, "Tower A", b.Name)
}

func TestAnnotateMarkerCommitsPosition(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	id := createTower(t, app)

	script := writeFile(t, t.TempDir(), "drag.yaml", []byte(`
tool: marker
image: {left: 0, top: 0, width: 200, height: 200}
events:
  - {type: down, marker: `+id+`-f2-a1}
  - {type: move, x: 50, y: 150}
  - {type: up}
`))
	_, err := run(t, app, "annotate", script, "--building", id, "--floor", "2")
	require.NoError(t, err)

	b, err := app.Buildings.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &geometry.Point{X: 25, Y: 75}, b.Floors[1].Apartments[0].DotPosition)
}

const garageDraft = `
name: Garage
sections:
  - area: {x: 0, y: 0, width: 50, height: 50}
    spaceCount: 2
  - area: {x: 50, y: 50, width: 40, height: 40}
    spaceCount: 1
`

func TestParkingCommands(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	dir := t.TempDir()
	draft := writeFile(t, dir, "garage.yaml", []byte(garageDraft))
	img := writeFile(t, dir, "img.png", pngBytes)

	_, err := run(t, app, "parking", "save", "-f", draft, "--overview", img, "--section-plan", "1="+img)
	assert.ErrorIs(t, err, service.ErrImageRequired)

	out, err := run(t, app, "parking", "save", "-f", draft, "--overview", img, "--section-plan", "1="+img, "--section-plan", "2="+img)
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	p, err := app.Parkings.GetByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, p.Spaces, 3)

	_, err = run(t, app, "parking", "status", id, p.Spaces[1].ID, "sold")
	require.NoError(t, err)

	out, err = run(t, app, "overlay", "parking", id, "--section", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `data-status="sold"`)

	xlsx := filepath.Join(dir, "report.xlsx")
	out, err = run(t, app, "report", "--xlsx", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 rows")
	_, err = os.Stat(xlsx)
	assert.NoError(t, err)
}

func TestSeedCommand(t *testing.T) {
	app := newTestApp(t)
	catalogue := writeFile(t, t.TempDir(), "seed.yaml", []byte(`
buildings:
  - name: Building A
    imageUrl: building.jpeg
    floorCount: 1
    floors:
      - floorNumber: 1
        apartments: [{area: 65.5}]
`))
	out, err := run(t, app, "seed", "-f", catalogue)
	require.NoError(t, err)
	assert.Contains(t, out, "created 1, skipped 0")

	out, err = run(t, app, "seed", "-f", catalogue)
	require.NoError(t, err)
	assert.Contains(t, out, "created 0, skipped 1")
}

func TestOpenStoreMemoryAndSQLite(t *testing.T) {
	ctx := context.Background()

	kv, closeFn, err := OpenStore(ctx, config.StoreConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.IsType(t, &store.MemoryKV{}, kv)

	kv, closeFn, err = OpenStore(ctx, config.StoreConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "db", "plans.db")})
	require.NoError(t, err)
	defer closeFn()
	require.NoError(t, kv.Set(ctx, store.BuildingsKey, "[]"))
	got, err := kv.Get(ctx, store.BuildingsKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	_, _, err = OpenStore(ctx, config.StoreConfig{Backend: "mongo"})
	assert.Error(t, err)
}
