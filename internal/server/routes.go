package http

import (
	"net/http"
)

// unsupportedRoutes are Lemmy endpoints with no Bluesky counterpart.
var unsupportedRoutes = []string{
	"/api/v3/community",
	"/api/v3/community/list",
	"/api/v3/community/follow",
	"/api/v3/community/block",
	"/api/v3/community/ban_user",
	"/api/v3/community/mod",
	"/api/v3/post/lock",
	"/api/v3/post/feature",
	"/api/v3/post/remove",
	"/api/v3/post/save",
	"/api/v3/post/mark_as_read",
	"/api/v3/post/report/list",
	"/api/v3/comment/remove",
	"/api/v3/comment/save",
	"/api/v3/comment/distinguish",
	"/api/v3/comment/report/list",
	"/api/v3/private_message",
	"/api/v3/private_message/list",
	"/api/v3/user/block",
	"/api/v3/user/ban",
	"/api/v3/user/register",
	"/api/v3/user/save_user_settings",
	"/api/v3/admin/add",
	"/api/v3/modlog",
}

func (s *Server) routes() {
	s.router.Use(s.requestID, s.accessLog)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	v3 := s.router.PathPrefix("/api/v3").Subrouter()

	v3.HandleFunc("/user/login", s.handleLogin).Methods(http.MethodPost)
	v3.HandleFunc("/user/logout", s.handleLogout).Methods(http.MethodPost)
	v3.HandleFunc("/site", s.handleSite).Methods(http.MethodGet)

	v3.HandleFunc("/post/list", s.handlePostList).Methods(http.MethodGet)
	v3.HandleFunc("/post", s.handleGetPost).Methods(http.MethodGet)
	v3.HandleFunc("/post", s.handleCreatePost).Methods(http.MethodPost)
	v3.HandleFunc("/post/like", s.handleLikePost).Methods(http.MethodPost)
	v3.HandleFunc("/post/delete", s.handleDeletePost).Methods(http.MethodPost)
	v3.HandleFunc("/post/report", s.handleReportPost).Methods(http.MethodPost)

	v3.HandleFunc("/comment/list", s.handleCommentList).Methods(http.MethodGet)
	v3.HandleFunc("/comment", s.handleCreateComment).Methods(http.MethodPost)
	v3.HandleFunc("/comment/like", s.handleLikeComment).Methods(http.MethodPost)
	v3.HandleFunc("/comment/delete", s.handleDeleteComment).Methods(http.MethodPost)
	v3.HandleFunc("/comment/report", s.handleReportComment).Methods(http.MethodPost)

	v3.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	v3.HandleFunc("/user", s.handleUser).Methods(http.MethodGet)
	v3.HandleFunc("/user/replies", s.handleReplies).Methods(http.MethodGet)
	v3.HandleFunc("/user/mention", s.handleMentions).Methods(http.MethodGet)
	v3.HandleFunc("/user/unread_count", s.handleUnreadCount).Methods(http.MethodGet)
	v3.HandleFunc("/user/mark_all_as_read", s.handleMarkAllRead).Methods(http.MethodPost)

	for _, p := range unsupportedRoutes {
		v3.HandleFunc(p[len("/api/v3"):], s.handleUnsupported)
	}
	v3.PathPrefix("/").HandlerFunc(s.handleUnsupported)
}
