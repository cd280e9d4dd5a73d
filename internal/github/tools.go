package github

import (
	"context"

	"github.com/bobmcallan/hubgate/internal/tools"
)

// argString reads a validated string argument, empty when absent.
func argString(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

// argInt reads a validated int argument, falling back when absent.
func argInt(args map[string]any, name string, fallback int) int {
	if v, ok := args[name].(int); ok {
		return v
	}
	return fallback
}

// Tools returns the remote-repository tool catalog backed by this client.
func Tools(c *Client) []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "search_repositories",
			Description: "Search public repositories by free-text query, optionally filtered by language and minimum stars. Results are ordered by most recent activity.",
			Params: []tools.Param{
				{Name: "query", Type: tools.TypeString, Description: "Free-text search terms", Required: true},
				{Name: "language", Type: tools.TypeString, Description: "Restrict to a primary language"},
				{Name: "min_stars", Type: tools.TypeInt, Description: "Minimum star count", Default: 0},
				{Name: "limit", Type: tools.TypeInt, Description: "Maximum results to return", Default: 10},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return c.SearchByFilters(ctx,
					argString(args, "query"),
					argString(args, "language"),
					argInt(args, "min_stars", 0),
					argInt(args, "limit", 10))
			},
		},
		{
			Name:        "get_repository_details",
			Description: "Fetch metadata for a single repository: stars, forks, language, license, timestamps, open issue count.",
			Params: []tools.Param{
				{Name: "owner", Type: tools.TypeString, Description: "Repository owner login", Required: true},
				{Name: "name", Type: tools.TypeString, Description: "Repository name", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return c.GetRepositoryDetails(ctx, argString(args, "owner"), argString(args, "name"))
			},
		},
		{
			Name:        "get_repository_issues",
			Description: "List a repository's issues, newest first, optionally filtered by state (open, closed, all).",
			Params: []tools.Param{
				{Name: "owner", Type: tools.TypeString, Description: "Repository owner login", Required: true},
				{Name: "name", Type: tools.TypeString, Description: "Repository name", Required: true},
				{Name: "state", Type: tools.TypeString, Description: "Issue state filter: open, closed, or all", Default: "open"},
				{Name: "limit", Type: tools.TypeInt, Description: "Maximum results to return", Default: 10},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return c.GetRepositoryIssues(ctx,
					argString(args, "owner"),
					argString(args, "name"),
					argString(args, "state"),
					argInt(args, "limit", 10))
			},
		},
		{
			Name:        "get_repository_discussions",
			Description: "List a repository's discussions, newest first.",
			Params: []tools.Param{
				{Name: "owner", Type: tools.TypeString, Description: "Repository owner login", Required: true},
				{Name: "name", Type: tools.TypeString, Description: "Repository name", Required: true},
				{Name: "limit", Type: tools.TypeInt, Description: "Maximum results to return", Default: 10},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return c.GetRepositoryDiscussions(ctx,
					argString(args, "owner"),
					argString(args, "name"),
					argInt(args, "limit", 10))
			},
		},
		{
			Name:        "get_discussion",
			Description: "Fetch one discussion by number, including its first page of comments.",
			Params: []tools.Param{
				{Name: "owner", Type: tools.TypeString, Description: "Repository owner login", Required: true},
				{Name: "name", Type: tools.TypeString, Description: "Repository name", Required: true},
				{Name: "number", Type: tools.TypeInt, Description: "Discussion number", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return c.GetDiscussion(ctx,
					argString(args, "owner"),
					argString(args, "name"),
					argInt(args, "number", 0))
			},
		},
		{
			Name:        "create_discussion",
			Description: "Open a new discussion in a repository. The category defaults to the repository's first discussion category.",
			Params: []tools.Param{
				{Name: "owner", Type: tools.TypeString, Description: "Repository owner login", Required: true},
				{Name: "name", Type: tools.TypeString, Description: "Repository name", Required: true},
				{Name: "title", Type: tools.TypeString, Description: "Discussion title", Required: true},
				{Name: "body", Type: tools.TypeString, Description: "Discussion body (Markdown)", Required: true},
				{Name: "category", Type: tools.TypeString, Description: "Discussion category name"},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return c.CreateDiscussion(ctx,
					argString(args, "owner"),
					argString(args, "name"),
					argString(args, "category"),
					argString(args, "title"),
					argString(args, "body"))
			},
		},
		{
			Name:        "add_discussion_comment",
			Description: "Post a comment on an existing discussion, addressed by its node ID.",
			Params: []tools.Param{
				{Name: "discussion_id", Type: tools.TypeString, Description: "Discussion node ID (from get_discussion or get_repository_discussions)", Required: true},
				{Name: "body", Type: tools.TypeString, Description: "Comment body (Markdown)", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return c.AddDiscussionComment(ctx,
					argString(args, "discussion_id"),
					argString(args, "body"))
			},
		},
		{
			Name:        "get_top_repos_by_activity",
			Description: "List the most recently active public repositories, optionally narrowed to a topic category.",
			Params: []tools.Param{
				{Name: "category", Type: tools.TypeString, Description: "Topic to filter by"},
				{Name: "limit", Type: tools.TypeInt, Description: "Maximum results to return", Default: 10},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return c.TopReposByActivity(ctx, argString(args, "category"), argInt(args, "limit", 10))
			},
		},
		{
			Name:        "get_repo_id",
			Description: "Resolve a repository's node ID, needed by mutation tools such as create_discussion.",
			Params: []tools.Param{
				{Name: "owner", Type: tools.TypeString, Description: "Repository owner login", Required: true},
				{Name: "name", Type: tools.TypeString, Description: "Repository name", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := c.GetRepositoryID(ctx, argString(args, "owner"), argString(args, "name"))
				if err != nil {
					return nil, err
				}
				return map[string]string{"id": id}, nil
			},
		},
	}
}
