package roadmap

import (
	"fmt"
	"strings"

	"github.com/aretw0/mentorai/pkg/domain"
)

// template is one fixed milestone. describe receives the selected company names.
type template struct {
	title     string
	describe  func(names []string) string
	resources []domain.Resource
}

func fixed(s string) func([]string) string {
	return func([]string) string { return s }
}

var templates = []template{
	{
		title:    "Master Core Programming Concepts",
		describe: fixed("Build a strong foundation in programming fundamentals required by the selected companies."),
		resources: []domain.Resource{
			{Title: "Data Structures and Algorithms", URL: "https://example.com/dsa", Type: domain.ResourceCourse},
			{Title: "Object-Oriented Programming", URL: "https://example.com/oop", Type: domain.ResourceBook},
		},
	},
	{
		title: "Develop Technical Skills",
		describe: func(names []string) string {
			return fmt.Sprintf("Focus on the specific technical skills required by %s.", strings.Join(names, ", "))
		},
		resources: []domain.Resource{
			{Title: "System Design Fundamentals", URL: "https://example.com/system-design", Type: domain.ResourceVideo},
			{Title: "Advanced Problem Solving", URL: "https://example.com/problem-solving", Type: domain.ResourceArticle},
		},
	},
	{
		title:    "Build Projects",
		describe: fixed("Create portfolio projects that showcase your skills relevant to the target positions."),
		resources: []domain.Resource{
			{Title: "Project Ideas for Software Engineers", URL: "https://example.com/project-ideas", Type: domain.ResourceArticle},
			{Title: "Building a Full-Stack Application", URL: "https://example.com/fullstack", Type: domain.ResourceCourse},
		},
	},
	{
		title:    "Interview Preparation",
		describe: fixed("Prepare for technical interviews at your target companies."),
		resources: []domain.Resource{
			{Title: "Mock Interview Practice", URL: "https://example.com/mock-interviews", Type: domain.ResourceCourse},
			{Title: "Company-Specific Interview Questions", URL: "https://example.com/interview-questions", Type: domain.ResourceArticle},
		},
	},
	{
		title:    "Apply and Network",
		describe: fixed("Apply to positions and build your professional network."),
		resources: []domain.Resource{
			{Title: "Resume Building Workshop", URL: "https://example.com/resume", Type: domain.ResourceVideo},
			{Title: "Networking Strategies for Tech Professionals", URL: "https://example.com/networking", Type: domain.ResourceBook},
		},
	},
}
