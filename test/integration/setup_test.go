package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/internal/repositories/filtergroup"
	"github.com/Ramsey-B/fern/internal/repositories/filtervalue"
	"github.com/Ramsey-B/fern/internal/repositories/property"
	"github.com/Ramsey-B/fern/internal/repositories/propertyfilter"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testDB database.DB

	groupRepo    *filtergroup.Repository
	valueRepo    *filtervalue.Repository
	propertyRepo *property.Repository
	filterRepo   *propertyfilter.Repository
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	container, err := startPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	if err := setup(ctx, container); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up test database: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func startPostgres(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "fern",
			"POSTGRES_PASSWORD": "fern",
			"POSTGRES_DB":       "fern",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
}

func setup(ctx context.Context, container testcontainers.Container) error {
	host, err := container.Host(ctx)
	if err != nil {
		return err
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return err
	}

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	db, err := database.Connect(ctx, database.Config{
		Driver:   "postgres",
		Host:     host,
		Port:     port.Port(),
		UserName: "fern",
		Password: "fern",
		Name:     "fern",
		SSLMode:  "disable",
	}, logger)
	if err != nil {
		return err
	}

	driver, err := migratepg.WithInstance(db.Unsafe().DB, &migratepg.Config{})
	if err != nil {
		return err
	}

	ms := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: "../../db/pg",
	})
	if err := ms.Migrate("fern", driver); err != nil {
		return err
	}

	testDB = db
	groupRepo = filtergroup.NewRepository(db, logger)
	valueRepo = filtervalue.NewRepository(db, logger)
	propertyRepo = property.NewRepository(db, logger)
	filterRepo = propertyfilter.NewRepository(db, logger)
	return nil
}

func requireDB(t *testing.T) {
	t.Helper()
	if testing.Short() || testDB == nil {
		t.Skip("skipping database-backed test in short mode")
	}
}

// resetTables clears all rows between tests so scenarios don't bleed into
// each other.
func resetTables(t *testing.T) {
	t.Helper()
	_, err := testDB.Unsafe().Exec(`TRUNCATE property_filters, filter_values, filter_groups, properties CASCADE`)
	require.NoError(t, err)
}

func seedGroup(t *testing.T, page, name string) *models.FilterGroup {
	t.Helper()
	group, err := groupRepo.Create(context.Background(), models.CreateFilterGroupRequest{
		Page:     page,
		Name:     name,
		Slug:     page + "-" + name + "-" + uuid.New().String()[:8],
		DataType: models.FilterGroupDataTypeString,
	})
	require.NoError(t, err)
	require.NotNil(t, group)
	return group
}

func seedValue(t *testing.T, groupID, value string) *models.FilterValue {
	t.Helper()
	fv, err := valueRepo.Create(context.Background(), models.CreateFilterValueRequest{
		FilterGroupID: groupID,
		Value:         value,
		Label:         value,
	})
	require.NoError(t, err)
	require.NotNil(t, fv)
	return fv
}

type seedPropertyOpts struct {
	title       string
	city        string
	price       float64
	bedrooms    *int
	publishedAt *time.Time
}

func seedProperty(t *testing.T, opts seedPropertyOpts) string {
	t.Helper()
	id := uuid.New().String()
	if opts.city == "" {
		opts.city = "Austin"
	}
	_, err := testDB.Unsafe().Exec(
		`INSERT INTO properties (id, title, slug, price, city, bedrooms, is_active, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, true, $7)`,
		id, opts.title, opts.title+"-"+id[:8], opts.price, opts.city, opts.bedrooms, opts.publishedAt,
	)
	require.NoError(t, err)
	return id
}

func associationCount(t *testing.T, propertyID string) int {
	t.Helper()
	var count int
	err := testDB.Unsafe().Get(&count, `SELECT COUNT(*) FROM property_filters WHERE property_id = $1`, propertyID)
	require.NoError(t, err)
	return count
}

func intPtr(n int) *int { return &n }

func timePtr(ts time.Time) *time.Time { return &ts }
