package backend

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/adminconsole/internal/audit"
	"github.com/dropDatabas3/adminconsole/internal/auth"
	"github.com/dropDatabas3/adminconsole/internal/backend/password"
	"github.com/dropDatabas3/adminconsole/internal/backend/tokens"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/post"
	"github.com/dropDatabas3/adminconsole/internal/util"
	"github.com/dropDatabas3/adminconsole/internal/validation"
)

const (
	tenantHeader = "tenant-id"
	maxBody      = 64 * 1024
)

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeFail(w, CodeBadRequest, "invalid json")
		return false
	}
	return true
}

// issuePair emite access + refresh (guardado como hash).
func (s *Server) issuePair(r *http.Request, userID int64) (*auth.TokenPair, error) {
	access, exp, err := s.issuer.IssueAccess(userID, r.Header.Get(tenantHeader))
	if err != nil {
		return nil, err
	}
	refresh, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveRefreshToken(r.Context(), tokens.SHA256Base64URL(refresh), userID, s.now().Add(s.refreshTTL)); err != nil {
		return nil, err
	}
	return &auth.TokenPair{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresTime:  exp.UnixMilli(),
	}, nil
}

// login maneja POST /admin-api/system/auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("backend"), logger.Op("backend.login"))

	var req auth.Credentials
	if !decode(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeFail(w, CodeBadRequest, "username and password are required")
		return
	}

	u, err := s.store.UserByUsername(ctx, req.Username)
	if err != nil || !password.Verify(req.Password, u.PasswordHash) {
		audit.Log(ctx, audit.EventLoginFailed, logger.Username(util.MaskIdentifier(req.Username)), logger.ClientIP(r.RemoteAddr))
		writeFail(w, CodeBadCredential, "invalid username or password")
		return
	}
	if u.Status != 0 {
		log.Info("disabled user tried to log in", logger.Username(u.Username))
		writeFail(w, CodeUserDisabled, "user is disabled")
		return
	}

	pair, err := s.issuePair(r, u.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	audit.Log(ctx, audit.EventLoginOK, logger.Username(u.Username), logger.String("tenant", r.Header.Get(tenantHeader)))
	writeOK(w, pair)
}

// logout maneja POST /admin-api/system/auth/logout. Siempre responde ok;
// con un token válido revoca los refresh tokens del usuario.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if id, err := s.issuer.Parse(bearer(r)); err == nil {
		if err := s.store.RevokeUserTokens(r.Context(), id); err != nil {
			logger.From(r.Context()).Warn("revoke tokens failed", logger.Err(err))
		}
		audit.Log(r.Context(), audit.EventLogout, logger.ID(strconv.FormatInt(id, 10)))
	}
	writeOK(w, true)
}

// refresh maneja POST /admin-api/system/auth/refresh-token?refreshToken=
// El refresh token es de uso único: se rota en cada llamada.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("refreshToken"))
	if raw == "" {
		writeFail(w, CodeBadRequest, "refreshToken is required")
		return
	}
	id, err := s.store.ConsumeRefreshToken(r.Context(), tokens.SHA256Base64URL(raw), s.now())
	if err != nil {
		writeFail(w, CodeUnauthorized, "refresh token invalid or expired")
		return
	}
	pair, err := s.issuePair(r, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	audit.Log(r.Context(), audit.EventTokenRefresh, logger.ID(strconv.FormatInt(id, 10)))
	writeOK(w, pair)
}

// permissionInfo maneja GET /admin-api/system/auth/get-permission-info
func (s *Server) permissionInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := s.store.UserByID(ctx, userID(ctx))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.store.Grants(ctx, u.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	info := auth.PermissionInfo{
		User:        u.Profile(),
		Roles:       g.Roles,
		Menus:       g.Menus,
		Permissions: g.Permissions,
		HomePath:    u.HomePath,
	}
	if info.Permissions == nil {
		info.Permissions = []string{}
	}
	writeOK(w, info)
}

// dictSimpleList maneja GET /admin-api/system/dict-data/simple-list
func (s *Server) dictSimpleList(w http.ResponseWriter, r *http.Request) {
	dd, err := s.store.DictData(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, dd)
}

func (s *Server) postPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := post.PageParam{Name: q.Get("name"), Code: q.Get("code")}
	p.PageNo, _ = strconv.Atoi(q.Get("pageNo"))
	p.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	if raw := q.Get("status"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeFail(w, CodeBadRequest, "invalid status")
			return
		}
		p.Status = &v
	}
	page, err := s.store.ListPosts(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, page)
}

func queryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeFail(w, CodeBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) postGet(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r)
	if !ok {
		return
	}
	p, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, p)
}

// validPost los mismos requeridos que valida la consola.
func validPost(w http.ResponseWriter, p post.Post) bool {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Code) == "" {
		writeFail(w, CodeBadRequest, "name and code are required")
		return false
	}
	if !validation.ValidPostCode(p.Code) {
		writeFail(w, CodeBadRequest, "invalid post code")
		return false
	}
	return true
}

func (s *Server) postCreate(w http.ResponseWriter, r *http.Request) {
	var p post.Post
	if !decode(w, r, &p) || !validPost(w, p) {
		return
	}
	id, err := s.store.CreatePost(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	audit.Log(r.Context(), audit.EventPostCreated, logger.ID(strconv.FormatInt(id, 10)), logger.Key(p.Code))
	writeOK(w, id)
}

func (s *Server) postUpdate(w http.ResponseWriter, r *http.Request) {
	var p post.Post
	if !decode(w, r, &p) || !validPost(w, p) {
		return
	}
	if p.ID <= 0 {
		writeFail(w, CodeBadRequest, "invalid id")
		return
	}
	if err := s.store.UpdatePost(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	audit.Log(r.Context(), audit.EventPostUpdated, logger.ID(strconv.FormatInt(p.ID, 10)), logger.Key(p.Code))
	writeOK(w, true)
}

func (s *Server) postDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeletePost(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	audit.Log(r.Context(), audit.EventPostDeleted, logger.ID(strconv.FormatInt(id, 10)))
	writeOK(w, true)
}
