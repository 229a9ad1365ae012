// Package seeder fills an in-memory deployment with demo principals and
// content. Everything goes through the public services so the seeded state
// obeys the same rules as real traffic.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	cmodels "confessional/internal/confession/models"
	mmodels "confessional/internal/moderation/models"
	vmodels "confessional/internal/verification/models"
	id "confessional/pkg/domain"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "demo-password-123"

// AdminEmail is the seeded administrator.
const AdminEmail = "admin@example.com"

// pngEvidence is the smallest payload the evidence adapter accepts as an image.
var pngEvidence = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 24)...)

// Principals defines the verification operations the seeder drives
type Principals interface {
	BootstrapAdmin(ctx context.Context, email, password string) (*vmodels.Principal, error)
	Register(ctx context.Context, cmd vmodels.RegisterCommand) (*vmodels.Principal, error)
	Approve(ctx context.Context, actorID, principalID id.PrincipalID) (*vmodels.Principal, error)
	Reject(ctx context.Context, actorID, principalID id.PrincipalID) (*vmodels.Principal, error)
}

// Confessions defines the content operations the seeder drives
type Confessions interface {
	Create(ctx context.Context, authorID id.PrincipalID, cmd cmodels.CreateCommand) (*cmodels.View, error)
	ToggleLike(ctx context.Context, viewerID id.PrincipalID, confessionID id.ConfessionID) (bool, error)
	Comment(ctx context.Context, viewerID id.PrincipalID, confessionID id.ConfessionID, text string) (*cmodels.CommentView, error)
}

// Moderation defines the reporting operations the seeder drives
type Moderation interface {
	Report(ctx context.Context, contentID id.ConfessionID, reporterID id.PrincipalID, reason string) (*mmodels.Report, error)
	BanAuthor(ctx context.Context, contentID id.ConfessionID, actorID id.PrincipalID) error
}

// Seeder populates a fresh deployment with demo data
type Seeder struct {
	principals  Principals
	confessions Confessions
	moderation  Moderation
	logger      *slog.Logger
}

// New creates a new seeder
func New(principals Principals, confessions Confessions, moderation Moderation, logger *slog.Logger) *Seeder {
	return &Seeder{
		principals:  principals,
		confessions: confessions,
		moderation:  moderation,
		logger:      logger,
	}
}

type demoUser struct {
	email  string
	status vmodels.Status
}

var demoUsers = []demoUser{
	{"alice@example.com", vmodels.StatusApproved},
	{"bob@example.com", vmodels.StatusApproved},
	{"charlie@example.com", vmodels.StatusApproved},
	{"diana@example.com", vmodels.StatusApproved},
	{"eve@example.com", vmodels.StatusPending},
	{"frank@example.com", vmodels.StatusRejected},
	{"mallory@example.com", vmodels.StatusApproved},
}

var demoConfessions = []struct {
	author string
	text   string
}{
	{"alice@example.com", "I still don't know how to exit vim. I just close the terminal."},
	{"bob@example.com", "I water my neighbour's plants while they're away and secretly talk to them."},
	{"charlie@example.com", "I have never once read the release notes before upgrading."},
	{"diana@example.com", "I reply-all on purpose when the thread gets boring."},
}

// SeedAll populates the services with demo data
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	admin, err := s.principals.BootstrapAdmin(ctx, AdminEmail, DemoPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	users, err := s.seedPrincipals(ctx, admin.ID)
	if err != nil {
		return fmt.Errorf("failed to seed principals: %w", err)
	}

	posted, err := s.seedConfessions(ctx, users)
	if err != nil {
		return fmt.Errorf("failed to seed confessions: %w", err)
	}

	if err := s.seedEngagement(ctx, users, posted); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	if err := s.seedModeration(ctx, admin.ID, users); err != nil {
		return fmt.Errorf("failed to seed moderation: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"principals", len(users)+1,
		"confessions", len(posted)+1,
	)
	return nil
}

func (s *Seeder) seedPrincipals(ctx context.Context, adminID id.PrincipalID) (map[string]id.PrincipalID, error) {
	users := make(map[string]id.PrincipalID, len(demoUsers))
	for _, u := range demoUsers {
		p, err := s.principals.Register(ctx, vmodels.RegisterCommand{
			Email:       u.email,
			Password:    DemoPassword,
			Evidence:    pngEvidence,
			ContentType: "image/png",
		})
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", u.email, err)
		}

		switch u.status {
		case vmodels.StatusApproved:
			_, err = s.principals.Approve(ctx, adminID, p.ID)
		case vmodels.StatusRejected:
			_, err = s.principals.Reject(ctx, adminID, p.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("adjudicate %s: %w", u.email, err)
		}
		users[u.email] = p.ID
	}
	return users, nil
}

func (s *Seeder) post(ctx context.Context, author id.PrincipalID, text string) (id.ConfessionID, error) {
	view, err := s.confessions.Create(ctx, author, cmodels.CreateCommand{Text: text})
	if err != nil {
		return id.ConfessionID{}, err
	}
	return id.ParseConfessionID(view.ID)
}

func (s *Seeder) seedConfessions(ctx context.Context, users map[string]id.PrincipalID) ([]id.ConfessionID, error) {
	posted := make([]id.ConfessionID, 0, len(demoConfessions))
	for _, c := range demoConfessions {
		cid, err := s.post(ctx, users[c.author], c.text)
		if err != nil {
			return nil, fmt.Errorf("post as %s: %w", c.author, err)
		}
		posted = append(posted, cid)
	}
	return posted, nil
}

func (s *Seeder) seedEngagement(ctx context.Context, users map[string]id.PrincipalID, posted []id.ConfessionID) error {
	readers := []string{"alice@example.com", "bob@example.com", "charlie@example.com", "diana@example.com"}
	for i, cid := range posted {
		// every reader except the author likes it
		for j, reader := range readers {
			if j == i {
				continue
			}
			if _, err := s.confessions.ToggleLike(ctx, users[reader], cid); err != nil {
				return err
			}
		}
		commenter := readers[(i+1)%len(readers)]
		if _, err := s.confessions.Comment(ctx, users[commenter], cid, "same, honestly"); err != nil {
			return err
		}
	}
	return nil
}

// seedModeration leaves one open report and one banned author for the
// admin screens.
func (s *Seeder) seedModeration(ctx context.Context, adminID id.PrincipalID, users map[string]id.PrincipalID) error {
	cid, err := s.post(ctx, users["mallory@example.com"], "Buy cheap followers at my totally legit website!!!")
	if err != nil {
		return err
	}
	for _, reporter := range []string{"alice@example.com", "bob@example.com"} {
		if _, err := s.moderation.Report(ctx, cid, users[reporter], "spam"); err != nil {
			return err
		}
	}
	return s.moderation.BanAuthor(ctx, cid, adminID)
}
