package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mudkipdev/rephoton/internal/adapter"
	"github.com/mudkipdev/rephoton/internal/models"
)

type serviceFunc func(ctx context.Context, svc *adapter.Service) (any, error)

// serve runs fn against the caller's session and writes its result.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, fn serviceFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), s.RequestTimeout)
	defer cancel()

	var out any
	err := s.api.With(ctx, bearerToken(r), func(svc *adapter.Service) error {
		var err error
		out, err = fn(ctx, svc)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// serveBody decodes a JSON request body into T before serving.
func serveBody[T any](s *Server, w http.ResponseWriter, r *http.Request, fn func(context.Context, *adapter.Service, T) (any, error)) {
	var req T
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		return fn(ctx, svc, req)
	})
}

func pageQuery(q url.Values) (adapter.PageQuery, error) {
	page, err := queryInt(q, "page")
	if err != nil {
		return adapter.PageQuery{}, err
	}
	limit, err := queryInt(q, "limit")
	if err != nil {
		return adapter.PageQuery{}, err
	}
	return adapter.PageQuery{PageCursor: q.Get("page_cursor"), Page: page, Limit: limit}, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": s.api.Health()})
}

func (s *Server) handleUnsupported(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, adapter.Unsupported(r.Method+" "+r.URL.Path))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.Login
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.RequestTimeout)
	defer cancel()

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, jwtCookie(r, resp.JWT, 0))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.RequestTimeout)
	defer cancel()

	if err := s.api.Logout(ctx, bearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, jwtCookie(r, "", -1))
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// jwtCookie carries the session token for browser clients. maxAge < 0
// clears it.
func jwtCookie(r *http.Request, token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     "jwt",
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.RequestTimeout)
	defer cancel()

	resp, err := s.api.Site(ctx, bearerToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePostList(w http.ResponseWriter, r *http.Request) {
	pq, err := pageQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		return svc.ListPosts(ctx, pq)
	})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := queryID(q, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	commentID, err := queryID(q, "comment_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if id == nil && commentID == nil {
		s.writeError(w, r, errInvalid("id or comment_id required"))
		return
	}
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		var postID int32
		if id != nil {
			postID = *id
		}
		return svc.GetPost(ctx, postID, commentID)
	})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	serveBody(s, w, r, func(ctx context.Context, svc *adapter.Service, req models.CreatePost) (any, error) {
		return svc.CreatePost(ctx, req)
	})
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	serveBody(s, w, r, func(ctx context.Context, svc *adapter.Service, req models.CreatePostLike) (any, error) {
		return svc.LikePost(ctx, req)
	})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	serveBody(s, w, r, func(ctx context.Context, svc *adapter.Service, req models.DeletePost) (any, error) {
		return svc.DeletePost(ctx, req)
	})
}

func (s *Server) handleReportPost(w http.ResponseWriter, r *http.Request) {
	serveBody(s, w, r, func(ctx context.Context, svc *adapter.Service, req models.CreatePostReport) (any, error) {
		return svc.ReportPost(ctx, req)
	})
}

func (s *Server) handleCommentList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	postID, err := queryID(q, "post_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	parentID, err := queryID(q, "parent_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	depth, err := queryInt(q, "max_depth")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		return svc.ListComments(ctx, adapter.CommentsQuery{PostID: postID, ParentID: parentID, MaxDepth: depth})
	})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	serveBody(s, w, r, func(ctx context.Context, svc *adapter.Service, req models.CreateComment) (any, error) {
		return svc.CreateComment(ctx, req)
	})
}

func (s *Server) handleLikeComment(w http.ResponseWriter, r *http.Request) {
	serveBody(s, w, r, func(ctx context.Context, svc *adapter.Service, req models.CreateCommentLike) (any, error) {
		return svc.LikeComment(ctx, req)
	})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	serveBody(s, w, r, func(ctx context.Context, svc *adapter.Service, req models.DeleteComment) (any, error) {
		return svc.DeleteComment(ctx, req)
	})
}

func (s *Server) handleReportComment(w http.ResponseWriter, r *http.Request) {
	serveBody(s, w, r, func(ctx context.Context, svc *adapter.Service, req models.CreateCommentReport) (any, error) {
		return svc.ReportComment(ctx, req)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pq, err := pageQuery(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		return svc.Search(ctx, adapter.SearchQuery{PageQuery: pq, Q: q.Get("q"), Type: q.Get("type_")})
	})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pq, err := pageQuery(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	personID, err := queryID(q, "person_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		return svc.GetPersonDetails(ctx, adapter.PersonQuery{PageQuery: pq, Username: q.Get("username"), PersonID: personID})
	})
}

func (s *Server) notificationsQuery(w http.ResponseWriter, r *http.Request) (adapter.NotificationsQuery, bool) {
	q := r.URL.Query()
	pq, err := pageQuery(q)
	if err != nil {
		s.writeError(w, r, err)
		return adapter.NotificationsQuery{}, false
	}
	return adapter.NotificationsQuery{PageQuery: pq, UnreadOnly: queryBool(q, "unread_only")}, true
}

func (s *Server) handleReplies(w http.ResponseWriter, r *http.Request) {
	nq, ok := s.notificationsQuery(w, r)
	if !ok {
		return
	}
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		return svc.GetReplies(ctx, nq)
	})
}

func (s *Server) handleMentions(w http.ResponseWriter, r *http.Request) {
	nq, ok := s.notificationsQuery(w, r)
	if !ok {
		return
	}
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		return svc.GetMentions(ctx, nq)
	})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		return svc.UnreadCount(ctx)
	})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, func(ctx context.Context, svc *adapter.Service) (any, error) {
		return svc.MarkAllRead(ctx)
	})
}
