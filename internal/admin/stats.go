package admin

import (
	"context"
	"sync"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/auth"
	"GHXPortal/internal/booking"
	"GHXPortal/internal/mentor"
	"GHXPortal/internal/program"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type UserStats struct {
	Total  int64               `json:"total"`
	Active int64               `json:"active"`
	ByRole map[auth.Role]int64 `json:"byRole"`
}

type ProgramStats struct {
	Total    int64                    `json:"total"`
	ByStatus map[program.Status]int64 `json:"byStatus"`
}

type Stats struct {
	Users    UserStats    `json:"users"`
	Mentors  int64        `json:"mentors"`
	Programs ProgramStats `json:"programs"`
	Bookings int64        `json:"bookings"`
}

// StatsService gathers dashboard counters. Each count is an independent query,
// so they run concurrently and the first failure cancels the rest.
type StatsService struct {
	users    auth.UserStore
	mentors  mentor.Store
	programs program.Store
	bookings booking.Store
	logger   *zap.Logger
}

func NewStatsService(users auth.UserStore, mentors mentor.Store, programs program.Store, bookings booking.Store, logger *zap.Logger) *StatsService {
	return &StatsService{
		users:    users,
		mentors:  mentors,
		programs: programs,
		bookings: bookings,
		logger:   logger.Named("admin.stats"),
	}
}

var statRoles = []auth.Role{auth.RoleGuest, auth.RoleStartup, auth.RoleInvestor, auth.RoleMentor, auth.RoleAdmin}

func (s *StatsService) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Users:    UserStats{ByRole: make(map[auth.Role]int64, len(statRoles))},
		Programs: ProgramStats{ByStatus: map[program.Status]int64{}},
	}
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.users.CountUsers(ctx, auth.UserFilter{})
		stats.Users.Total = n
		return err
	})
	g.Go(func() error {
		active := true
		n, err := s.users.CountUsers(ctx, auth.UserFilter{Active: &active})
		stats.Users.Active = n
		return err
	})
	for _, role := range statRoles {
		role := role
		g.Go(func() error {
			n, err := s.users.CountUsers(ctx, auth.UserFilter{Role: role})
			if err != nil {
				return err
			}
			mu.Lock()
			stats.Users.ByRole[role] = n
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		n, err := s.mentors.Count(ctx)
		stats.Mentors = n
		return err
	})
	g.Go(func() error {
		counts, err := s.programs.CountByStatus(ctx)
		if err != nil {
			return err
		}
		for status, n := range counts {
			stats.Programs.ByStatus[status] = n
			stats.Programs.Total += n
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.bookings.Count(ctx)
		stats.Bookings = n
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to collect stats", zap.Error(err))
		return nil, apperr.Internal("Failed to fetch stats: "+err.Error(), err)
	}
	return stats, nil
}
