package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/project"
	"github.com/campus-hub/campus-social/internal/domain/user"
	"github.com/campus-hub/campus-social/pkg/logger"
)

// demoPassword is the password of every seeded account.
const demoPassword = "campus-demo"

// Demo identifies the seeded records the command exercises.
type Demo struct {
	StudentID   int64
	ProfessorID int64
	AdminID     int64

	// PostID is the professor's most recent post.
	PostID int64
}

type account struct {
	username string
	email    string
	role     string
	bio      string
	skills   []user.Skill
	projects []project.Project
	posts    []string
}

var demoAccounts = []account{
	{
		username: "amira",
		email:    "amira@campus.edu",
		role:     user.RoleStudent,
		bio:      "Second-year CS student",
		skills: []user.Skill{
			{Name: "Go", Level: "intermediate"},
			{Name: "SQL", Level: "beginner"},
		},
		projects: []project.Project{
			{Title: "Timetable planner", Description: "Builds a weekly schedule from course codes", FilePath: "projects/amira/planner.zip", Skills: []string{"Go"}},
		},
		posts: []string{"Looking for a study group for Databases II"},
	},
	{
		username: "prof.okafor",
		email:    "okafor@campus.edu",
		role:     user.RoleProfessor,
		bio:      "Distributed systems",
		skills: []user.Skill{
			{Name: "Distributed Systems", Level: "expert"},
		},
		posts: []string{
			"Office hours move to Thursday this week",
			"Reading list for the consensus seminar is up",
		},
	},
	{
		username: "admin",
		email:    "admin@campus.edu",
		role:     user.RoleAdmin,
		bio:      "Platform team",
	},
}

// seedDemo inserts the demo accounts and their content. Accounts that
// already exist (by email) are reused and their content is not duplicated.
func seedDemo(ctx context.Context, repos Repos, log *slog.Logger) (Demo, error) {
	var demo Demo

	for _, a := range demoAccounts {
		id, created, err := ensureUser(ctx, repos.Users, a)
		if err != nil {
			return Demo{}, err
		}

		switch a.role {
		case user.RoleStudent:
			demo.StudentID = id
		case user.RoleProfessor:
			demo.ProfessorID = id
		case user.RoleAdmin:
			demo.AdminID = id
		}

		if !created {
			log.Debug("demo account exists", logger.UserID(id), slog.String("email", a.email))
			continue
		}

		if err := seedContent(ctx, repos, id, a); err != nil {
			return Demo{}, err
		}
		log.Info("demo account seeded",
			logger.UserID(id),
			logger.Role(a.role),
			slog.Int("skills", len(a.skills)),
			slog.Int("projects", len(a.projects)),
			slog.Int("posts", len(a.posts)),
		)
	}

	recent, err := repos.Posts.FindRecentByAuthor(ctx, demo.ProfessorID, 1)
	if err != nil {
		return Demo{}, fmt.Errorf("find demo post: %w", err)
	}
	if len(recent) == 0 {
		return Demo{}, fmt.Errorf("professor %d has no posts", demo.ProfessorID)
	}
	demo.PostID = recent[0].ID

	return demo, nil
}

func ensureUser(ctx context.Context, users user.Repository, a account) (int64, bool, error) {
	existing, err := users.FindByEmail(ctx, a.email)
	if err != nil {
		return 0, false, fmt.Errorf("find %s: %w", a.email, err)
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	hash, err := hashPassword(demoPassword)
	if err != nil {
		return 0, false, err
	}

	id, err := users.Create(ctx, &user.User{
		Username:     a.username,
		Email:        a.email,
		PasswordHash: hash,
		Bio:          a.bio,
		Role:         a.role,
	})
	if err != nil {
		return 0, false, fmt.Errorf("create %s: %w", a.email, err)
	}
	return id, true, nil
}

func seedContent(ctx context.Context, repos Repos, userID int64, a account) error {
	for _, s := range a.skills {
		s.UserID = userID
		if err := repos.Skills.Create(ctx, s); err != nil {
			return fmt.Errorf("create skill %s: %w", s.Name, err)
		}
	}

	for _, p := range a.projects {
		p.OwnerID = userID
		if _, err := repos.Projects.Create(ctx, &p); err != nil {
			return fmt.Errorf("create project %s: %w", p.Title, err)
		}
	}

	for _, content := range a.posts {
		if _, err := repos.Posts.Create(ctx, &post.Post{AuthorID: userID, Content: content, Category: "general"}); err != nil {
			return fmt.Errorf("create post: %w", err)
		}
	}

	if a.role == user.RoleStudent {
		cv := &user.CV{UserID: userID, FilePath: fmt.Sprintf("cvs/%d.pdf", userID)}
		if err := repos.CVs.Upsert(ctx, cv); err != nil {
			return fmt.Errorf("upsert cv: %w", err)
		}
	}

	return nil
}

// hashPassword hashes a password using bcrypt.
func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
