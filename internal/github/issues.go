package github

import (
	"context"
	"fmt"
	"strings"
)

// Issue is the summarized issue shape returned by get_repository_issues.
type Issue struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	URL       string `json:"url"`
	Author    string `json:"author,omitempty"`
	Comments  int    `json:"comments"`
	CreatedAt string `json:"created_at"`
}

// IssueList is the aggregated outcome of a paginated issue listing.
type IssueList struct {
	Issues      []Issue `json:"issues"`
	TotalCount  int     `json:"total_count"`
	Incomplete  bool    `json:"incomplete,omitempty"`
	ErrorDetail string  `json:"error,omitempty"`
}

const repositoryIssuesQuery = `
query($owner: String!, $name: String!, $states: [IssueState!], $pageSize: Int!, $after: String) {
  repository(owner: $owner, name: $name) {
    issues(first: $pageSize, after: $after, states: $states, orderBy: {field: CREATED_AT, direction: DESC}) {
      totalCount
      pageInfo {
        endCursor
        hasNextPage
      }
      nodes {
        number
        title
        state
        url
        createdAt
        author { login }
        comments { totalCount }
      }
    }
  }
}`

type issuesPage struct {
	Repository *struct {
		Issues struct {
			TotalCount int `json:"totalCount"`
			PageInfo   struct {
				EndCursor   string `json:"endCursor"`
				HasNextPage bool   `json:"hasNextPage"`
			} `json:"pageInfo"`
			Nodes []struct {
				Number    int    `json:"number"`
				Title     string `json:"title"`
				State     string `json:"state"`
				URL       string `json:"url"`
				CreatedAt string `json:"createdAt"`
				Author    struct {
					Login string `json:"login"`
				} `json:"author"`
				Comments struct {
					TotalCount int `json:"totalCount"`
				} `json:"comments"`
			} `json:"nodes"`
		} `json:"issues"`
	} `json:"repository"`
}

// issueStates maps the tool's state filter to the upstream vocabulary.
// Only the documented values pass through; anything else is rejected at
// the adapter boundary rather than guessed at.
func issueStates(state string) ([]string, error) {
	switch strings.ToLower(state) {
	case "", "all":
		return nil, nil
	case "open":
		return []string{"OPEN"}, nil
	case "closed":
		return []string{"CLOSED"}, nil
	default:
		return nil, fmt.Errorf("state must be one of open, closed, all (got %q)", state)
	}
}

// GetRepositoryIssues pages through a repository's issues until limit
// results are collected or the connection is exhausted. Partial results
// gathered before a page failure are returned with the error noted.
func (c *Client) GetRepositoryIssues(ctx context.Context, owner, name, state string, limit int) (*IssueList, error) {
	states, err := issueStates(state)
	if err != nil {
		return nil, err
	}

	result := &IssueList{Issues: []Issue{}}
	cursor := ""

	for len(result.Issues) < limit {
		pageSize := c.pageSize
		if remaining := limit - len(result.Issues); remaining < pageSize {
			pageSize = remaining
		}

		variables := map[string]any{
			"owner":    owner,
			"name":     name,
			"pageSize": pageSize,
		}
		if states != nil {
			variables["states"] = states
		}
		if cursor != "" {
			variables["after"] = cursor
		}

		var page issuesPage
		if err := c.Execute(ctx, repositoryIssuesQuery, variables, &page); err != nil {
			if len(result.Issues) == 0 {
				return nil, err
			}
			result.Incomplete = true
			result.ErrorDetail = err.Error()
			return result, nil
		}
		if page.Repository == nil {
			return nil, fmt.Errorf("repository %s/%s not found", owner, name)
		}

		conn := page.Repository.Issues
		result.TotalCount = conn.TotalCount
		if len(conn.Nodes) == 0 {
			break
		}
		for _, node := range conn.Nodes {
			if len(result.Issues) >= limit {
				break
			}
			result.Issues = append(result.Issues, Issue{
				Number:    node.Number,
				Title:     node.Title,
				State:     node.State,
				URL:       node.URL,
				Author:    node.Author.Login,
				Comments:  node.Comments.TotalCount,
				CreatedAt: node.CreatedAt,
			})
		}

		// An empty or repeating cursor means upstream has nothing further,
		// whatever hasNextPage claims.
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" || conn.PageInfo.EndCursor == cursor {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}

	return result, nil
}
