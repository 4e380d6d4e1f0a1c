package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/2beens/blogql/internal/blog"
	"github.com/2beens/blogql/internal/service"
	"github.com/2beens/blogql/internal/users"
)

// blogNode is the source value behind a BlogNode. When comments is nil they
// are loaded on demand.
type blogNode struct {
	*blog.Blog
	comments []*blog.Comment
}

func sourceField[S any](typ graphql.Output, get func(S) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			src, ok := p.Source.(S)
			if !ok {
				return nil, fmt.Errorf("unexpected source type %T", p.Source)
			}
			return get(src), nil
		},
	}
}

func nonNullString() graphql.Output {
	return graphql.NewNonNull(graphql.String)
}

var pageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"startCursor":     &graphql.Field{Type: graphql.String},
		"endCursor":       &graphql.Field{Type: graphql.String},
	},
})

var tokenPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TokenPayload",
	Fields: graphql.Fields{
		"username": &graphql.Field{Type: nonNullString()},
		"exp":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"origIat":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

func pageInfoMap(info service.PageInfo) map[string]interface{} {
	m := map[string]interface{}{
		"hasNextPage":     info.HasNextPage,
		"hasPreviousPage": info.HasPreviousPage,
		"startCursor":     nil,
		"endCursor":       nil,
	}
	if info.StartCursor != "" {
		m["startCursor"] = info.StartCursor
	}
	if info.EndCursor != "" {
		m["endCursor"] = info.EndCursor
	}
	return m
}

func connectionMap[T any](conn *service.Connection[T], node func(T) interface{}) map[string]interface{} {
	edges := make([]interface{}, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		edges = append(edges, map[string]interface{}{
			"cursor": e.Cursor,
			"node":   node(e.Node),
		})
	}
	return map[string]interface{}{
		"edges":    edges,
		"pageInfo": pageInfoMap(conn.PageInfo),
	}
}

func connectionType(name string, node graphql.Output) *graphql.Object {
	edge := graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Edge",
		Fields: graphql.Fields{
			"cursor": &graphql.Field{Type: nonNullString()},
			"node":   &graphql.Field{Type: node},
		},
	})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Connection",
		Fields: graphql.Fields{
			"pageInfo": &graphql.Field{Type: graphql.NewNonNull(pageInfoType)},
			"edges":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(edge))},
		},
	})
}

func lastLogin(u *users.User) interface{} {
	if u.LastLogin == nil {
		return nil
	}
	return *u.LastLogin
}

func toBlogNodes(blogs []*blog.Blog) []interface{} {
	nodes := make([]interface{}, 0, len(blogs))
	for _, b := range blogs {
		nodes = append(nodes, &blogNode{Blog: b})
	}
	return nodes
}

func toCommentNodes(comments []*blog.Comment) []interface{} {
	nodes := make([]interface{}, 0, len(comments))
	for _, c := range comments {
		nodes = append(nodes, c)
	}
	return nodes
}
