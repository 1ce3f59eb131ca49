package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/core/school"
	"github.com/kitobai/kitob/core/user"
)

const statsCacheKey = "dashboard:stats"

type Stats struct {
	TotalBranches    int `json:"totalBranches"`
	ActiveBranches   int `json:"activeBranches"`
	InactiveBranches int `json:"inactiveBranches"`
	TotalClasses     int `json:"totalClasses"`
	ActiveClasses    int `json:"activeClasses"`
	InactiveClasses  int `json:"inactiveClasses"`
	TotalSubjects    int `json:"totalSubjects"`
	TotalInterviews  int `json:"totalInterviews"`
	TotalUsers       int `json:"totalUsers"`
}

type (
	// Cache is any key-value store with expiring entries.
	Cache interface {
		// Get returns ok=false on a miss.
		Get(ctx context.Context, key string) (val []byte, ok bool, err error)
		Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	}

	Service interface {
		Stats(ctx context.Context) (Stats, error)
	}

	service struct {
		branchRepo    school.NamedRepository
		classRepo     school.ClassRepository
		subjectRepo   school.NamedRepository
		adminRepo     interview.AdminRepository
		generatedRepo interview.GeneratedRepository
		usrSvc        user.Service
		cache         Cache
		ttl           time.Duration
		logger        core.Logger
	}
)

var _ Service = (*service)(nil)

// Repositories groups the collections the stats are computed from.
type Repositories struct {
	Branches   school.NamedRepository
	Classes    school.ClassRepository
	Subjects   school.NamedRepository
	Interviews interview.AdminRepository
	Generated  interview.GeneratedRepository
}

// NewService returns the dashboard service. A nil cache or a zero ttl disables caching.
func NewService(repos Repositories, usrSvc user.Service, cache Cache, ttl time.Duration, logger core.Logger) Service {
	return &service{
		branchRepo:    repos.Branches,
		classRepo:     repos.Classes,
		subjectRepo:   repos.Subjects,
		adminRepo:     repos.Interviews,
		generatedRepo: repos.Generated,
		usrSvc:        usrSvc,
		cache:         cache,
		ttl:           ttl,
		logger:        logger,
	}
}

func (svc *service) cached() bool { return svc.cache != nil && svc.ttl > 0 }

func (svc *service) Stats(ctx context.Context) (Stats, error) {
	if svc.cached() {
		if raw, ok, err := svc.cache.Get(ctx, statsCacheKey); err != nil {
			svc.logger.Warn("dashboard: reading cache: "+err.Error(), err)
		} else if ok {
			var st Stats
			if err = json.Unmarshal(raw, &st); err == nil {
				return st, nil
			}
		}
	}

	st, err := svc.compute(ctx)
	if err != nil {
		return Stats{}, err
	}

	if svc.cached() {
		raw, _ := json.Marshal(st)
		if err = svc.cache.Set(ctx, statsCacheKey, raw, svc.ttl); err != nil {
			svc.logger.Warn("dashboard: writing cache: "+err.Error(), err)
		}
	}
	return st, nil
}

func (svc *service) compute(ctx context.Context) (st Stats, err error) {
	if st.TotalBranches, err = svc.branchRepo.Count(ctx, ""); err != nil {
		return st, errors.Wrap(err, "counting branches")
	}
	if st.ActiveBranches, err = svc.branchRepo.Count(ctx, core.StatusActive); err != nil {
		return st, errors.Wrap(err, "counting active branches")
	}
	st.InactiveBranches = st.TotalBranches - st.ActiveBranches

	if st.TotalClasses, err = svc.classRepo.Count(ctx, ""); err != nil {
		return st, errors.Wrap(err, "counting classes")
	}
	if st.ActiveClasses, err = svc.classRepo.Count(ctx, core.StatusActive); err != nil {
		return st, errors.Wrap(err, "counting active classes")
	}
	st.InactiveClasses = st.TotalClasses - st.ActiveClasses

	if st.TotalSubjects, err = svc.subjectRepo.Count(ctx, ""); err != nil {
		return st, errors.Wrap(err, "counting subjects")
	}

	admins, err := svc.adminRepo.Count(ctx)
	if err != nil {
		return st, errors.Wrap(err, "counting admin interviews")
	}
	generated, err := svc.generatedRepo.Count(ctx)
	if err != nil {
		return st, errors.Wrap(err, "counting generated interviews")
	}
	st.TotalInterviews = admins + generated

	if st.TotalUsers, err = svc.usrSvc.Count(ctx); err != nil {
		return st, errors.Wrap(err, "counting users")
	}
	return st, nil
}
