package profile

import (
	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/project"
	"github.com/campus-hub/campus-social/internal/domain/user"
)

type Stats struct {
	TotalSkills   int `json:"total_skills"`
	TotalProjects int `json:"total_projects"`
	TotalPosts    int `json:"total_posts"`
}

// FullProfile is what the owner sees.
type FullProfile struct {
	User        user.Profile      `json:"user"`
	Skills      []user.Skill      `json:"skills"`
	Projects    []project.Project `json:"projects"`
	RecentPosts []post.Post       `json:"recent_posts"`
	CV          *user.CV          `json:"cv"`
	Stats       Stats             `json:"stats"`
}

type PublicUser struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
	FacultyID      int64  `json:"faculty_id"`
	MajorID        int64  `json:"major_id"`
}

// PublicProfile is what everyone else sees: no contact data, no project
// files, no posts, no CV.
type PublicProfile struct {
	User     PublicUser       `json:"user"`
	Skills   []user.Skill     `json:"skills"`
	Projects []project.Public `json:"projects"`
	Stats    Stats            `json:"stats"`
}

// Public projects the full profile. It reads nothing but f.
func (f *FullProfile) Public() *PublicProfile {
	if f == nil {
		return nil
	}

	skills := make([]user.Skill, len(f.Skills))
	copy(skills, f.Skills)

	projects := make([]project.Public, len(f.Projects))
	for i, p := range f.Projects {
		projects[i] = p.Public()
	}

	return &PublicProfile{
		User: PublicUser{
			ID:             f.User.ID,
			Username:       f.User.Username,
			Bio:            f.User.Bio,
			ProfilePicture: f.User.ProfilePicture,
			FacultyID:      f.User.FacultyID,
			MajorID:        f.User.MajorID,
		},
		Skills:   skills,
		Projects: projects,
		Stats:    f.Stats,
	}
}
