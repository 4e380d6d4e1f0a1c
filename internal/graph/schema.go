package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/2beens/blogql/internal/auth"
	"github.com/2beens/blogql/internal/blog"
	"github.com/2beens/blogql/internal/globalid"
	"github.com/2beens/blogql/internal/service"
	"github.com/2beens/blogql/internal/telemetry/metrics"
	"github.com/2beens/blogql/internal/users"
)

type resolvers struct {
	query          *service.QueryService
	mutation       *service.MutationService
	codec          *globalid.Codec
	metricsManager *metrics.Manager
}

// NewSchema builds the immutable operation table served by the handler.
func NewSchema(
	query *service.QueryService,
	mutation *service.MutationService,
	codec *globalid.Codec,
	metricsManager *metrics.Manager,
) (graphql.Schema, error) {
	r := &resolvers{
		query:          query,
		mutation:       mutation,
		codec:          codec,
		metricsManager: metricsManager,
	}

	userType, blogType, commentType := r.nodeTypes()

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: r.queryFields(userType, blogType, commentType),
	})
	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Mutation",
		Fields: r.mutationFields(userType, blogType, commentType),
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// wrap turns resolver failures into coded graphql errors.
func wrap(resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		res, err := resolve(p)
		if err != nil {
			return nil, toGraphQLError(p.Context, p.Info.FieldName, err)
		}
		return res, nil
	}
}

func (r *resolvers) nodeTypes() (userType, blogType, commentType *graphql.Object) {
	userType = graphql.NewObject(graphql.ObjectConfig{
		Name: globalid.TypeUser,
		Fields: graphql.Fields{
			"id": sourceField(graphql.NewNonNull(graphql.ID), func(u *users.User) interface{} {
				return r.codec.Encode(globalid.TypeUser, u.ID)
			}),
			"username": sourceField(nonNullString(), func(u *users.User) interface{} {
				return u.Username
			}),
			"firstName": sourceField(nonNullString(), func(u *users.User) interface{} {
				return u.FirstName
			}),
			"lastName": sourceField(nonNullString(), func(u *users.User) interface{} {
				return u.LastName
			}),
			"email": sourceField(nonNullString(), func(u *users.User) interface{} {
				return u.Email
			}),
			"isActive": sourceField(graphql.NewNonNull(graphql.Boolean), func(u *users.User) interface{} {
				return u.IsActive
			}),
			"dateJoined": sourceField(graphql.NewNonNull(graphql.DateTime), func(u *users.User) interface{} {
				return u.DateJoined
			}),
			"lastLogin": sourceField(graphql.DateTime, lastLogin),
		},
	})

	blogType = graphql.NewObject(graphql.ObjectConfig{
		Name: globalid.TypeBlog,
		Fields: graphql.Fields{
			"id": sourceField(graphql.NewNonNull(graphql.ID), func(b *blogNode) interface{} {
				return r.codec.Encode(globalid.TypeBlog, b.ID)
			}),
			"title": sourceField(nonNullString(), func(b *blogNode) interface{} {
				return b.Title
			}),
			"content": sourceField(nonNullString(), func(b *blogNode) interface{} {
				return b.Content
			}),
		},
	})

	commentType = graphql.NewObject(graphql.ObjectConfig{
		Name: globalid.TypeComment,
		Fields: graphql.Fields{
			"id": sourceField(graphql.NewNonNull(graphql.ID), func(c *blog.Comment) interface{} {
				return r.codec.Encode(globalid.TypeComment, c.ID)
			}),
			"name": sourceField(nonNullString(), func(c *blog.Comment) interface{} {
				return c.Name
			}),
			"email": sourceField(nonNullString(), func(c *blog.Comment) interface{} {
				return c.Email
			}),
			"body": sourceField(nonNullString(), func(c *blog.Comment) interface{} {
				return c.Body
			}),
			"createdOn": sourceField(graphql.NewNonNull(graphql.DateTime), func(c *blog.Comment) interface{} {
				return c.CreatedOn
			}),
		},
	})

	// cross references are added once all three types exist
	userType.AddFieldConfig("blogSet", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(blogType))),
		Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
			u, ok := p.Source.(*users.User)
			if !ok {
				return nil, fmt.Errorf("unexpected source type %T", p.Source)
			}
			blogs, err := r.query.AuthorBlogs(p.Context, u.ID)
			if err != nil {
				return nil, err
			}
			return toBlogNodes(blogs), nil
		}),
	})
	blogType.AddFieldConfig("author", &graphql.Field{
		Type: graphql.NewNonNull(userType),
		Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
			b, ok := p.Source.(*blogNode)
			if !ok {
				return nil, fmt.Errorf("unexpected source type %T", p.Source)
			}
			return r.query.User(p.Context, b.AuthorID)
		}),
	})
	blogType.AddFieldConfig("comments", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(commentType))),
		Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
			b, ok := p.Source.(*blogNode)
			if !ok {
				return nil, fmt.Errorf("unexpected source type %T", p.Source)
			}
			if b.comments != nil {
				return toCommentNodes(b.comments), nil
			}
			comments, err := r.query.BlogComments(p.Context, b.ID)
			if err != nil {
				return nil, err
			}
			return toCommentNodes(comments), nil
		}),
	})
	commentType.AddFieldConfig("blog", &graphql.Field{
		Type: blogType,
		Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
			c, ok := p.Source.(*blog.Comment)
			if !ok {
				return nil, fmt.Errorf("unexpected source type %T", p.Source)
			}
			return r.parentBlog(p, c.BlogID)
		}),
	})

	return userType, blogType, commentType
}

// parentBlog loads the blog of a comment through the authenticated
// blog lookup, so an anonymous caller gets null instead of the blog.
func (r *resolvers) parentBlog(p graphql.ResolveParams, blogID int) (interface{}, error) {
	if auth.TokenFromContext(p.Context) == "" {
		return nil, nil
	}
	detail, err := r.query.GetBlog(p.Context, r.codec.Encode(globalid.TypeBlog, blogID))
	if err != nil {
		return nil, err
	}
	return &blogNode{Blog: detail.Blog, comments: detail.Comments}, nil
}

func optString(args map[string]interface{}, name string) *string {
	s, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func optInt(args map[string]interface{}, name string) *int {
	i, ok := args[name].(int)
	if !ok {
		return nil
	}
	return &i
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func pageArgs(args map[string]interface{}) service.PageArgs {
	return service.PageArgs{
		First: optInt(args, "first"),
		After: stringArg(args, "after"),
	}
}

func connectionArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"first": &graphql.ArgumentConfig{Type: graphql.Int},
		"after": &graphql.ArgumentConfig{Type: graphql.String},
	}
}

func (r *resolvers) queryFields(userType, blogType, commentType *graphql.Object) graphql.Fields {
	blogsArgs := connectionArgs()
	blogsArgs["authorUsername"] = &graphql.ArgumentConfig{Type: graphql.String}

	return graphql.Fields{
		"blogs": &graphql.Field{
			Type: graphql.NewNonNull(connectionType("BlogNode", blogType)),
			Args: blogsArgs,
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				conn, err := r.query.ListBlogs(p.Context, service.BlogsFilter{
					AuthorUsername: optString(p.Args, "authorUsername"),
					PageArgs:       pageArgs(p.Args),
				})
				if err != nil {
					return nil, err
				}
				return connectionMap(conn, func(b *blog.Blog) interface{} {
					return &blogNode{Blog: b}
				}), nil
			}),
		},
		"blog": &graphql.Field{
			Type: blogType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				detail, err := r.query.GetBlog(p.Context, stringArg(p.Args, "id"))
				if err != nil {
					return nil, err
				}
				return &blogNode{Blog: detail.Blog, comments: detail.Comments}, nil
			}),
		},
		"users": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				return r.query.ListUsers(p.Context)
			}),
		},
		"loggedIn": &graphql.Field{
			Type: userType,
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				return r.query.CurrentUser(p.Context)
			}),
		},
		"comments": &graphql.Field{
			Type: graphql.NewNonNull(connectionType("CommentNode", commentType)),
			Args: connectionArgs(),
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				conn, err := r.query.ListComments(p.Context, pageArgs(p.Args))
				if err != nil {
					return nil, err
				}
				return connectionMap(conn, func(c *blog.Comment) interface{} {
					return c
				}), nil
			}),
		},
		"commentsForBlog": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(commentType))),
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				comments, err := r.query.ListCommentsForBlog(p.Context, stringArg(p.Args, "id"))
				if err != nil {
					return nil, err
				}
				return toCommentNodes(comments), nil
			}),
		},
	}
}

func payloadType(name string, fields graphql.Fields) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:   name,
		Fields: fields,
	})
}

func successField() *graphql.Field {
	return &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)}
}

func (r *resolvers) tokenFields() graphql.Fields {
	return graphql.Fields{
		"token":            &graphql.Field{Type: nonNullString()},
		"payload":          &graphql.Field{Type: graphql.NewNonNull(tokenPayloadType)},
		"refreshExpiresIn": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	}
}

func payloadMap(payload *auth.Payload) map[string]interface{} {
	return map[string]interface{}{
		"username": payload.Username,
		"exp":      int(payload.Exp),
		"origIat":  int(payload.OrigIat),
	}
}

func (r *resolvers) tokenResult(res *auth.TokenResult) map[string]interface{} {
	if r.metricsManager != nil {
		r.metricsManager.CounterTokensIssued.Inc()
	}
	return map[string]interface{}{
		"token":            res.Token,
		"payload":          payloadMap(res.Payload),
		"refreshExpiresIn": int(res.RefreshExpiresIn),
	}
}

func (r *resolvers) mutationFields(userType, blogType, commentType *graphql.Object) graphql.Fields {
	required := func(t graphql.Input) *graphql.ArgumentConfig {
		return &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)}
	}
	optional := func(t graphql.Input) *graphql.ArgumentConfig {
		return &graphql.ArgumentConfig{Type: t}
	}

	return graphql.Fields{
		"createUser": &graphql.Field{
			Type: payloadType("CreateUserPayload", graphql.Fields{
				"user":    &graphql.Field{Type: graphql.NewNonNull(userType)},
				"success": successField(),
			}),
			Args: graphql.FieldConfigArgument{
				"username": required(graphql.String),
				"password": required(graphql.String),
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				user, err := r.mutation.CreateUser(p.Context, stringArg(p.Args, "username"), stringArg(p.Args, "password"))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"user": user, "success": true}, nil
			}),
		},
		"createBlog": &graphql.Field{
			Type: payloadType("CreateBlogPayload", graphql.Fields{
				"blog":    &graphql.Field{Type: graphql.NewNonNull(blogType)},
				"success": successField(),
			}),
			Args: graphql.FieldConfigArgument{
				"title":   required(graphql.String),
				"content": optional(graphql.String),
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				b, err := r.mutation.CreateBlog(p.Context, stringArg(p.Args, "title"), optString(p.Args, "content"))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"blog": &blogNode{Blog: b}, "success": true}, nil
			}),
		},
		"updateBlog": &graphql.Field{
			Type: payloadType("UpdateBlogPayload", graphql.Fields{
				"blog":    &graphql.Field{Type: graphql.NewNonNull(blogType)},
				"success": successField(),
			}),
			Args: graphql.FieldConfigArgument{
				"id":      required(graphql.ID),
				"title":   optional(graphql.String),
				"content": optional(graphql.String),
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				b, err := r.mutation.UpdateBlog(
					p.Context,
					stringArg(p.Args, "id"),
					optString(p.Args, "title"),
					optString(p.Args, "content"),
				)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"blog": &blogNode{Blog: b}, "success": true}, nil
			}),
		},
		"deleteBlog": &graphql.Field{
			Type: payloadType("DeleteBlogPayload", graphql.Fields{
				"success": successField(),
			}),
			Args: graphql.FieldConfigArgument{
				"id": required(graphql.ID),
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				if err := r.mutation.DeleteBlog(p.Context, stringArg(p.Args, "id")); err != nil {
					return nil, err
				}
				return map[string]interface{}{"success": true}, nil
			}),
		},
		"createComment": &graphql.Field{
			Type: payloadType("CreateCommentPayload", graphql.Fields{
				"comment": &graphql.Field{Type: graphql.NewNonNull(commentType)},
				"success": successField(),
			}),
			Args: graphql.FieldConfigArgument{
				"blogId": required(graphql.ID),
				"body":   required(graphql.String),
				"name":   optional(graphql.String),
				"email":  optional(graphql.String),
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				c, err := r.mutation.CreateComment(
					p.Context,
					stringArg(p.Args, "blogId"),
					stringArg(p.Args, "body"),
					optString(p.Args, "name"),
					optString(p.Args, "email"),
				)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"comment": c, "success": true}, nil
			}),
		},
		"deleteComment": &graphql.Field{
			Type: payloadType("DeleteCommentPayload", graphql.Fields{
				"success": successField(),
			}),
			Args: graphql.FieldConfigArgument{
				"commentId": required(graphql.ID),
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				if err := r.mutation.DeleteComment(p.Context, stringArg(p.Args, "commentId")); err != nil {
					return nil, err
				}
				return map[string]interface{}{"success": true}, nil
			}),
		},
		"tokenAuth": &graphql.Field{
			Type: payloadType("ObtainJSONWebToken", r.tokenFields()),
			Args: graphql.FieldConfigArgument{
				"username": required(graphql.String),
				"password": required(graphql.String),
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				res, err := r.mutation.TokenAuth(p.Context, stringArg(p.Args, "username"), stringArg(p.Args, "password"))
				if err != nil {
					return nil, err
				}
				return r.tokenResult(res), nil
			}),
		},
		"verifyToken": &graphql.Field{
			Type: payloadType("Verify", graphql.Fields{
				"payload": &graphql.Field{Type: graphql.NewNonNull(tokenPayloadType)},
			}),
			Args: graphql.FieldConfigArgument{
				"token": required(graphql.String),
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				payload, err := r.mutation.VerifyToken(stringArg(p.Args, "token"))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"payload": payloadMap(payload)}, nil
			}),
		},
		"refreshToken": &graphql.Field{
			Type: payloadType("Refresh", r.tokenFields()),
			Args: graphql.FieldConfigArgument{
				"token": required(graphql.String),
			},
			Resolve: wrap(func(p graphql.ResolveParams) (interface{}, error) {
				res, err := r.mutation.RefreshToken(stringArg(p.Args, "token"))
				if err != nil {
					return nil, err
				}
				return r.tokenResult(res), nil
			}),
		},
	}
}
