package github

import (
	"context"
	"fmt"
)

// Discussion is the summarized discussion shape returned by list tools.
type Discussion struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Author    string `json:"author,omitempty"`
	Category  string `json:"category,omitempty"`
	CreatedAt string `json:"created_at"`
}

// DiscussionList is the aggregated outcome of a paginated discussion listing.
type DiscussionList struct {
	Discussions []Discussion `json:"discussions"`
	TotalCount  int          `json:"total_count"`
	Incomplete  bool         `json:"incomplete,omitempty"`
	ErrorDetail string       `json:"error,omitempty"`
}

const repositoryDiscussionsQuery = `
query($owner: String!, $name: String!, $pageSize: Int!, $after: String) {
  repository(owner: $owner, name: $name) {
    discussions(first: $pageSize, after: $after, orderBy: {field: CREATED_AT, direction: DESC}) {
      totalCount
      pageInfo {
        endCursor
        hasNextPage
      }
      nodes {
        id
        number
        title
        url
        createdAt
        author { login }
        category { name }
      }
    }
  }
}`

type discussionsPage struct {
	Repository *struct {
		Discussions struct {
			TotalCount int `json:"totalCount"`
			PageInfo   struct {
				EndCursor   string `json:"endCursor"`
				HasNextPage bool   `json:"hasNextPage"`
			} `json:"pageInfo"`
			Nodes []struct {
				ID        string `json:"id"`
				Number    int    `json:"number"`
				Title     string `json:"title"`
				URL       string `json:"url"`
				CreatedAt string `json:"createdAt"`
				Author    struct {
					Login string `json:"login"`
				} `json:"author"`
				Category struct {
					Name string `json:"name"`
				} `json:"category"`
			} `json:"nodes"`
		} `json:"discussions"`
	} `json:"repository"`
}

// GetRepositoryDiscussions pages through a repository's discussions until
// limit results are collected or the connection is exhausted.
func (c *Client) GetRepositoryDiscussions(ctx context.Context, owner, name string, limit int) (*DiscussionList, error) {
	result := &DiscussionList{Discussions: []Discussion{}}
	cursor := ""

	for len(result.Discussions) < limit {
		pageSize := c.pageSize
		if remaining := limit - len(result.Discussions); remaining < pageSize {
			pageSize = remaining
		}

		variables := map[string]any{
			"owner":    owner,
			"name":     name,
			"pageSize": pageSize,
		}
		if cursor != "" {
			variables["after"] = cursor
		}

		var page discussionsPage
		if err := c.Execute(ctx, repositoryDiscussionsQuery, variables, &page); err != nil {
			if len(result.Discussions) == 0 {
				return nil, err
			}
			result.Incomplete = true
			result.ErrorDetail = err.Error()
			return result, nil
		}
		if page.Repository == nil {
			return nil, fmt.Errorf("repository %s/%s not found", owner, name)
		}

		conn := page.Repository.Discussions
		result.TotalCount = conn.TotalCount
		if len(conn.Nodes) == 0 {
			break
		}
		for _, node := range conn.Nodes {
			if len(result.Discussions) >= limit {
				break
			}
			result.Discussions = append(result.Discussions, Discussion{
				ID:        node.ID,
				Number:    node.Number,
				Title:     node.Title,
				URL:       node.URL,
				Author:    node.Author.Login,
				Category:  node.Category.Name,
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

const discussionQuery = `
query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    discussion(number: $number) {
      id
      number
      title
      body
      url
      createdAt
      author { login }
      category { name }
      comments(first: 20) {
        totalCount
        nodes {
          body
          createdAt
          author { login }
        }
      }
    }
  }
}`

// DiscussionComment is one comment under a discussion.
type DiscussionComment struct {
	Author    string `json:"author,omitempty"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// DiscussionDetails is the full detail shape for a single discussion,
// including its first page of comments.
type DiscussionDetails struct {
	ID           string              `json:"id"`
	Number       int                 `json:"number"`
	Title        string              `json:"title"`
	Body         string              `json:"body"`
	URL          string              `json:"url"`
	Author       string              `json:"author,omitempty"`
	Category     string              `json:"category,omitempty"`
	CreatedAt    string              `json:"created_at"`
	CommentCount int                 `json:"comment_count"`
	Comments     []DiscussionComment `json:"comments"`
}

type discussionPage struct {
	Repository *struct {
		Discussion *struct {
			ID        string `json:"id"`
			Number    int    `json:"number"`
			Title     string `json:"title"`
			Body      string `json:"body"`
			URL       string `json:"url"`
			CreatedAt string `json:"createdAt"`
			Author    struct {
				Login string `json:"login"`
			} `json:"author"`
			Category struct {
				Name string `json:"name"`
			} `json:"category"`
			Comments struct {
				TotalCount int `json:"totalCount"`
				Nodes      []struct {
					Body      string `json:"body"`
					CreatedAt string `json:"createdAt"`
					Author    struct {
						Login string `json:"login"`
					} `json:"author"`
				} `json:"nodes"`
			} `json:"comments"`
		} `json:"discussion"`
	} `json:"repository"`
}

// GetDiscussion fetches one discussion by number, with its first page of
// comments inlined.
func (c *Client) GetDiscussion(ctx context.Context, owner, name string, number int) (*DiscussionDetails, error) {
	variables := map[string]any{
		"owner":  owner,
		"name":   name,
		"number": number,
	}

	var page discussionPage
	if err := c.Execute(ctx, discussionQuery, variables, &page); err != nil {
		return nil, err
	}
	if page.Repository == nil {
		return nil, fmt.Errorf("repository %s/%s not found", owner, name)
	}
	if page.Repository.Discussion == nil {
		return nil, fmt.Errorf("discussion %d not found in %s/%s", number, owner, name)
	}

	d := page.Repository.Discussion
	details := &DiscussionDetails{
		ID:           d.ID,
		Number:       d.Number,
		Title:        d.Title,
		Body:         d.Body,
		URL:          d.URL,
		Author:       d.Author.Login,
		Category:     d.Category.Name,
		CreatedAt:    d.CreatedAt,
		CommentCount: d.Comments.TotalCount,
		Comments:     []DiscussionComment{},
	}
	for _, comment := range d.Comments.Nodes {
		details.Comments = append(details.Comments, DiscussionComment{
			Author:    comment.Author.Login,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt,
		})
	}
	return details, nil
}

const createDiscussionMutation = `
mutation($repositoryId: ID!, $categoryId: ID!, $title: String!, $body: String!) {
  createDiscussion(input: {repositoryId: $repositoryId, categoryId: $categoryId, title: $title, body: $body}) {
    discussion {
      id
      number
      title
      url
    }
  }
}`

const discussionCategoriesQuery = `
query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    discussionCategories(first: 25) {
      nodes {
        id
        name
      }
    }
  }
}`

// CreatedDiscussion is the result of create_discussion.
type CreatedDiscussion struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// resolveCategoryID finds a discussion category by name, or returns the
// first category when no name is given.
func (c *Client) resolveCategoryID(ctx context.Context, owner, name, category string) (string, error) {
	var page struct {
		Repository *struct {
			DiscussionCategories struct {
				Nodes []struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"nodes"`
			} `json:"discussionCategories"`
		} `json:"repository"`
	}
	if err := c.Execute(ctx, discussionCategoriesQuery, map[string]any{"owner": owner, "name": name}, &page); err != nil {
		return "", err
	}
	if page.Repository == nil || len(page.Repository.DiscussionCategories.Nodes) == 0 {
		return "", fmt.Errorf("repository %s/%s has no discussion categories", owner, name)
	}

	nodes := page.Repository.DiscussionCategories.Nodes
	if category == "" {
		return nodes[0].ID, nil
	}
	for _, node := range nodes {
		if node.Name == category {
			return node.ID, nil
		}
	}
	return "", fmt.Errorf("discussion category %q not found in %s/%s", category, owner, name)
}

// CreateDiscussion opens a new discussion. The repository and category
// node IDs are resolved first, then the mutation runs.
func (c *Client) CreateDiscussion(ctx context.Context, owner, name, category, title, body string) (*CreatedDiscussion, error) {
	repoID, err := c.GetRepositoryID(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	categoryID, err := c.resolveCategoryID(ctx, owner, name, category)
	if err != nil {
		return nil, err
	}

	variables := map[string]any{
		"repositoryId": repoID,
		"categoryId":   categoryID,
		"title":        title,
		"body":         body,
	}

	var page struct {
		CreateDiscussion struct {
			Discussion *CreatedDiscussion `json:"discussion"`
		} `json:"createDiscussion"`
	}
	if err := c.Execute(ctx, createDiscussionMutation, variables, &page); err != nil {
		return nil, err
	}
	if page.CreateDiscussion.Discussion == nil {
		return nil, fmt.Errorf("createDiscussion returned no discussion")
	}
	return page.CreateDiscussion.Discussion, nil
}

const addDiscussionCommentMutation = `
mutation($discussionId: ID!, $body: String!) {
  addDiscussionComment(input: {discussionId: $discussionId, body: $body}) {
    comment {
      id
      url
      createdAt
    }
  }
}`

// AddedComment is the result of add_discussion_comment.
type AddedComment struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// AddDiscussionComment posts a comment on an existing discussion,
// addressed by its GraphQL node ID.
func (c *Client) AddDiscussionComment(ctx context.Context, discussionID, body string) (*AddedComment, error) {
	variables := map[string]any{
		"discussionId": discussionID,
		"body":         body,
	}

	var page struct {
		AddDiscussionComment struct {
			Comment *struct {
				ID        string `json:"id"`
				URL       string `json:"url"`
				CreatedAt string `json:"createdAt"`
			} `json:"comment"`
		} `json:"addDiscussionComment"`
	}
	if err := c.Execute(ctx, addDiscussionCommentMutation, variables, &page); err != nil {
		return nil, err
	}
	if page.AddDiscussionComment.Comment == nil {
		return nil, fmt.Errorf("addDiscussionComment returned no comment")
	}
	cm := page.AddDiscussionComment.Comment
	return &AddedComment{ID: cm.ID, URL: cm.URL, CreatedAt: cm.CreatedAt}, nil
}
