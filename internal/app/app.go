// Package app assembles the attendance engine from configuration. The API
// server and attendancectl share it so both see the same stores and policy.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	auditService "github.com/cmlabs-hris/attendance-engine/internal/service/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/service/notification"
	reportService "github.com/cmlabs-hris/attendance-engine/internal/service/report"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// App holds the wired services. Close releases them in reverse order.
type App struct {
	Config     *config.Config
	Clock      clock.Clock
	DB         *database.DB
	Hub        *sse.Hub
	JWT        *jwt.JWTService
	Audit      *auditService.Service
	Attendance *attendanceService.AttendanceServiceImpl
	Report     *reportService.ReportServiceImpl
}

// Stores are the persistence collaborators of the engine.
type Stores struct {
	Records attendance.RecordStore
	Leaves  leave.HalfDayLookup
	Audits  audit.Repository
}

// New connects the configured store and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := newApp(cfg, clock.System())

	s, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}
	a.wire(s)
	return a, nil
}

// NewWithStores builds the services over caller-provided stores.
func NewWithStores(cfg *config.Config, clk clock.Clock, s Stores) *App {
	a := newApp(cfg, clk)
	a.wire(s)
	return a
}

func newApp(cfg *config.Config, clk clock.Clock) *App {
	if clk == nil {
		clk = clock.System()
	}
	return &App{
		Config: cfg,
		Clock:  clk,
		Hub:    sse.NewHub(0),
		JWT:    jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration),
	}
}

func (a *App) wire(s Stores) {
	cfg := a.Config
	a.Audit = auditService.NewAuditService(s.Audits, auditService.Config{})
	a.Attendance = attendanceService.NewAttendanceService(
		s.Records,
		s.Leaves,
		a.Audit,
		notification.NewSessionNotifier(a.Hub),
		a.Clock,
		attendanceService.Config{
			Location: cfg.Location(),
			Policy: attendanceService.FlagPolicy{
				FullDaySeconds:        cfg.Policy.FullDaySeconds,
				HalfDaySeconds:        cfg.Policy.HalfDaySeconds,
				OvertimeMarginSeconds: cfg.Policy.OvertimeMarginSeconds,
			},
		},
	)
	a.Report = reportService.NewReportService(a.Attendance, cfg.Location())
}

func (a *App) openStores(ctx context.Context) (Stores, error) {
	switch a.Config.Store.Driver {
	case DriverMemory:
		slog.Warn("using in-memory store, data is lost on exit")
		return Stores{
			Records: memory.NewAttendanceStore(),
			Leaves:  memory.NewLeaveRequestStore(),
			Audits:  memory.NewAuditStore(),
		}, nil

	case DriverPostgres:
		db, err := database.Connect(ctx, a.Config.DatabaseURL(), database.PoolOptions{
			MaxConns:        a.Config.Database.MaxConns,
			MinConns:        a.Config.Database.MinConns,
			MaxConnLifetime: time.Hour,
		})
		if err != nil {
			return Stores{}, fmt.Errorf("connect database: %w", err)
		}
		if err := postgresql.ApplySchema(ctx, db); err != nil {
			db.Close()
			return Stores{}, err
		}
		a.DB = db
		return Stores{
			Records: postgresql.NewAttendanceRepository(db),
			Leaves:  postgresql.NewLeaveRequestRepository(db),
			Audits:  postgresql.NewAuditRepository(db),
		}, nil

	default:
		return Stores{}, fmt.Errorf("unknown store driver %q", a.Config.Store.Driver)
	}
}

// Close drains pending audit writes and closes the database pool.
func (a *App) Close() {
	if a.Audit != nil {
		a.Audit.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
