package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"scholarhub/internal/cache"
	"scholarhub/internal/catalog"
	"scholarhub/internal/core"
)

const (
	keyDashboard      = "dashboard"
	keyScholarSummary = "scholars"
	keyProgramSummary = "programs"
	keyColleges       = "colleges:"
	keyDegreePrograms = "degree-programs:"
)

// ReportService computes the admin reports. Each entry point reconciles
// scholar statuses before reading counts, so a report never shows drifted
// statuses. Results are cached until the next write that changes them.
type ReportService struct {
	store   ReportStore
	catalog *catalog.Catalog
	cache   cache.Cache[any]

	// serializes recomputation so concurrent misses reconcile once
	mu sync.Mutex
	// bumped on every invalidation; results computed across a bump are not stored
	gen atomic.Uint64
}

// NewReportService wires the service. A nil cache disables caching.
func NewReportService(store ReportStore, cat *catalog.Catalog, c cache.Cache[any]) *ReportService {
	if cat == nil {
		cat = catalog.Default()
	}
	return &ReportService{store: store, catalog: cat, cache: c}
}

// Reconcile recomputes every student's scholar status and drops cached reports.
func (s *ReportService) Reconcile(ctx context.Context) (int64, error) {
	promoted, err := s.store.ReconcileAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}
	s.Invalidate()
	slog.InfoContext(ctx, "Scholar statuses reconciled", "promoted", promoted)
	return promoted, nil
}

// Audit recomputes each student's status from their applications and returns
// the students whose stored status differs. It reads only and does not
// reconcile first.
func (s *ReportService) Audit(ctx context.Context) ([]core.StatusMismatch, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	apps, err := s.store.ListApplications(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	statuses := make(map[string][]core.ApplicationStatus, len(students))
	for _, a := range apps {
		statuses[a.Username] = append(statuses[a.Username], a.Status)
	}

	var mismatches []core.StatusMismatch
	for _, acct := range students {
		want := core.DeriveScholarStatus(statuses[acct.Username])
		if acct.ScholarStatus != want {
			mismatches = append(mismatches, core.StatusMismatch{
				Username: acct.Username,
				Stored:   acct.ScholarStatus,
				Expected: want,
			})
		}
	}
	if len(mismatches) > 0 {
		slog.WarnContext(ctx, "Scholar status audit found mismatches", "students", len(students), "mismatches", len(mismatches))
	}
	return mismatches, nil
}

// Invalidate drops every cached report.
func (s *ReportService) Invalidate() {
	s.gen.Add(1)
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Dashboard computes all reports after a single reconciliation.
func (s *ReportService) Dashboard(ctx context.Context) (core.Dashboard, error) {
	return cached(ctx, s, keyDashboard, func(ctx context.Context) (core.Dashboard, error) {
		var d core.Dashboard
		scholarships := s.catalog.Scholarships()
		colleges := make([][]core.CollegeCount, len(scholarships))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			d.Scholars, err = s.scholarSummary(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			d.Programs, err = s.programSummary(gctx)
			return err
		})
		for i, name := range scholarships {
			i, name := i, name
			g.Go(func() error {
				var err error
				colleges[i], err = s.collegeBreakdown(gctx, name)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return core.Dashboard{}, err
		}

		d.Colleges = make(map[string][]core.CollegeCount, len(scholarships))
		for i, name := range scholarships {
			d.Colleges[name] = colleges[i]
		}
		return d, nil
	})
}

// ScholarSummary returns overall and per-municipality scholar counts. Every
// catalog municipality is present even with zero students.
func (s *ReportService) ScholarSummary(ctx context.Context) (core.ScholarSummary, error) {
	return cached(ctx, s, keyScholarSummary, s.scholarSummary)
}

// ProgramSummary returns accepted counts per scholarship program, overall and
// per municipality.
func (s *ReportService) ProgramSummary(ctx context.Context) (core.ProgramSummary, error) {
	return cached(ctx, s, keyProgramSummary, s.programSummary)
}

// CollegeBreakdown returns accepted counts per college for one scholarship program.
func (s *ReportService) CollegeBreakdown(ctx context.Context, scholarship string) ([]core.CollegeCount, error) {
	name, err := s.scholarshipName(scholarship)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, keyColleges+name, func(ctx context.Context) ([]core.CollegeCount, error) {
		return s.collegeBreakdown(ctx, name)
	})
}

// DegreeProgramBreakdown returns accepted counts per degree program of college
// for one scholarship program.
func (s *ReportService) DegreeProgramBreakdown(ctx context.Context, scholarship, college string) ([]core.DegreeProgramCount, error) {
	name, err := s.scholarshipName(scholarship)
	if err != nil {
		return nil, err
	}
	college = strings.TrimSpace(college)
	programs := s.catalog.Programs(college)
	if programs == nil {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownCollege, college)
	}
	return cached(ctx, s, keyDegreePrograms+name+"|"+college, func(ctx context.Context) ([]core.DegreeProgramCount, error) {
		rows, err := s.store.AcceptedByDegreeProgram(ctx, name, college)
		if err != nil {
			return nil, fmt.Errorf("degree program counts: %w", err)
		}
		return core.ZeroFillDegreePrograms(programs, rows), nil
	})
}

func (s *ReportService) scholarSummary(ctx context.Context) (core.ScholarSummary, error) {
	overall, err := s.store.ScholarCounts(ctx)
	if err != nil {
		return core.ScholarSummary{}, fmt.Errorf("scholar counts: %w", err)
	}
	rows, err := s.store.MunicipalityScholarCounts(ctx)
	if err != nil {
		return core.ScholarSummary{}, fmt.Errorf("municipality scholar counts: %w", err)
	}
	return core.ScholarSummary{
		Overall:        overall,
		ByMunicipality: core.ZeroFillScholarCounts(s.catalog.Municipalities(), rows),
	}, nil
}

func (s *ReportService) programSummary(ctx context.Context) (core.ProgramSummary, error) {
	total, err := s.store.CountApplications(ctx)
	if err != nil {
		return core.ProgramSummary{}, fmt.Errorf("count applications: %w", err)
	}
	rows, err := s.store.AcceptedByScholarship(ctx)
	if err != nil {
		return core.ProgramSummary{}, fmt.Errorf("accepted by scholarship: %w", err)
	}
	matrix, err := s.store.AcceptedByMunicipalityAndScholarship(ctx)
	if err != nil {
		return core.ProgramSummary{}, fmt.Errorf("accepted by municipality: %w", err)
	}

	known := s.catalog.Scholarships()
	byMunicipality := make(map[string][]core.ProgramCount, len(matrix))
	municipalities := s.catalog.Municipalities()
	for _, m := range matrix {
		name := core.MunicipalityLabel(m.Municipality)
		if _, ok := byMunicipality[name]; !ok && !s.catalog.HasMunicipality(name) {
			municipalities = append(municipalities, name)
		}
		byMunicipality[name] = append(byMunicipality[name], m.Programs...)
	}
	filled := make([]core.MunicipalityProgramCounts, len(municipalities))
	for i, name := range municipalities {
		filled[i] = core.MunicipalityProgramCounts{
			Municipality: name,
			Programs:     core.ZeroFillPrograms(known, byMunicipality[name]),
		}
	}

	return core.ProgramSummary{
		TotalApplications: total,
		ByScholarship:     core.ZeroFillPrograms(known, rows),
		ByMunicipality:    filled,
	}, nil
}

func (s *ReportService) collegeBreakdown(ctx context.Context, scholarship string) ([]core.CollegeCount, error) {
	rows, err := s.store.AcceptedByCollege(ctx, scholarship)
	if err != nil {
		return nil, fmt.Errorf("college counts: %w", err)
	}
	return core.ZeroFillColleges(s.catalog.Colleges(), rows), nil
}

// scholarshipName maps user input to the catalog spelling. Names outside the
// catalog are passed through so retired programs stay reportable.
func (s *ReportService) scholarshipName(in string) (string, error) {
	name := strings.TrimSpace(in)
	if name == "" {
		return "", core.ErrEmptyScholarship
	}
	if prog, ok := s.catalog.Scholarship(name); ok {
		return prog.Name, nil
	}
	return name, nil
}

// cached serves key from the cache or reconciles, computes and stores it.
func cached[T any](ctx context.Context, s *ReportService, key string, compute func(context.Context) (T, error)) (T, error) {
	if v, ok := s.lookup(key); ok {
		if out, ok := v.(T); ok {
			return out, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.lookup(key); ok {
		if out, ok := v.(T); ok {
			return out, nil
		}
	}

	var zero T
	gen := s.gen.Load()
	if _, err := s.store.ReconcileAll(ctx); err != nil {
		return zero, fmt.Errorf("reconcile: %w", err)
	}
	out, err := compute(ctx)
	if err != nil {
		return zero, err
	}
	if s.cache != nil && s.gen.Load() == gen {
		s.cache.Set(key, out)
	}
	slog.DebugContext(ctx, "Report computed", "report", key)
	return out, nil
}

func (s *ReportService) lookup(key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}
