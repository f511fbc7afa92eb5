package bridge

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	designtagger "github.com/kataras/design-tagger"
	"github.com/kataras/design-tagger/pkg/codegen"
	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/export"
	"github.com/kataras/design-tagger/pkg/props"
	"github.com/kataras/design-tagger/pkg/tags"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// SessionInfo describes an open session.
type SessionInfo struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	PageName string `json:"pageName"`
	Roots    int    `json:"roots"`
	Shapes   int    `json:"shapes"`
	Tagged   int    `json:"tagged"`
}

// ShapeInfo describes a selected shape and its tag, if any.
type ShapeInfo struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Children   int        `json:"children"`
	Tag        string     `json:"tag,omitempty"`
	Attributes *props.Map `json:"attributes,omitempty"`
}

// TagRequest is the body of an apply-tag request.
type TagRequest struct {
	Tag        string     `json:"tag"`
	Attributes *props.Map `json:"attributes"`
}

// CodeResponse holds the generated code of a session.
type CodeResponse struct {
	HTML   string          `json:"html"`
	CSS    string          `json:"css"`
	Report *codegen.Report `json:"report,omitempty"`
}

// HandleHealth returns server health status.
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.cfg.Plugin.Version,
		"sessions": s.sessions.Len(),
	})
}

// HandleOpenSession starts a session with the document in the request body.
func (s *Server) HandleOpenSession(c echo.Context) error {
	doc, err := readDocument(c)
	if err != nil {
		return err
	}
	sess := s.sessions.Open(doc)
	s.logInfo("Opened session %s for %q", sess.ID, doc.FileName)
	return c.JSON(http.StatusCreated, sessionInfo(sess))
}

// HandleReplaceDocument swaps the document of a session, keeping its tags.
func (s *Server) HandleReplaceDocument(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	doc, err := readDocument(c)
	if err != nil {
		return err
	}
	sess.SetDocument(doc)
	return c.JSON(http.StatusOK, sessionInfo(sess))
}

// HandleCloseSession ends a session.
func (s *Server) HandleCloseSession(c echo.Context) error {
	id := c.Param("id")
	if !s.sessions.Close(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSelection returns the root shapes of the session, or the shapes
// listed in the ids query parameter, with their current tags.
func (s *Server) HandleSelection(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	doc := sess.Document()
	snap := sess.Tags.Snapshot()

	shapes := doc.Shapes
	if ids := c.QueryParam("ids"); ids != "" {
		shapes = nil
		for _, id := range designtagger.ParseNodeIDs(ids) {
			if sh := doc.Find(id); sh != nil {
				shapes = append(shapes, sh)
			}
		}
	}

	out := make([]ShapeInfo, 0, len(shapes))
	for _, sh := range shapes {
		info := ShapeInfo{ID: sh.ID, Name: sh.Name, Type: string(sh.Kind), Children: len(sh.Children)}
		if a, ok := snap.Lookup(sh.ID); ok {
			info.Tag = a.Tag
			info.Attributes = a.Attributes.Clone()
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, out)
}

// HandleListTags returns the tag assignments of a session.
func (s *Server) HandleListTags(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.Tags.Snapshot().Entries())
}

// HandleApplyTag tags a shape of the session document.
func (s *Server) HandleApplyTag(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	shapeID, err := shapeParam(c)
	if err != nil {
		return err
	}
	if sess.Document().Find(shapeID) == nil {
		return NewNotFoundError("shape", shapeID)
	}

	var req TagRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := sess.Tags.Apply(shapeID, req.Tag, req.Attributes); err != nil {
		return tagError(err)
	}

	a, _ := sess.Tags.Get(shapeID)
	return c.JSON(http.StatusOK, tags.Entry{ID: shapeID, Tag: a.Tag, Attributes: a.Attributes})
}

// HandleRemoveTag untags a shape.
func (s *Server) HandleRemoveTag(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	shapeID, err := shapeParam(c)
	if err != nil {
		return err
	}
	if !sess.Tags.Remove(shapeID) {
		return NewNotFoundError("tag", shapeID)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleClearTags removes every tag of a session.
func (s *Server) HandleClearTags(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	sess.Tags.Clear()
	return c.NoContent(http.StatusNoContent)
}

// HandleExport returns the export artifact as JSON.
func (s *Server) HandleExport(c echo.Context) error {
	result, err := s.export(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result.Export)
}

// HandleExportMsgpack returns the export artifact encoded with MessagePack.
func (s *Server) HandleExportMsgpack(c echo.Context) error {
	result, err := s.export(c)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(result.Export)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleCode returns the generated HTML and CSS.
func (s *Server) HandleCode(c echo.Context) error {
	result, err := s.export(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CodeResponse{HTML: result.HTML, CSS: result.CSS, Report: result.Report})
}

func (s *Server) export(c echo.Context) (*designtagger.Result, error) {
	sess, err := s.session(c)
	if err != nil {
		return nil, err
	}
	opts, err := s.exportOptions(c)
	if err != nil {
		return nil, err
	}
	result, err := designtagger.Export(c.Request().Context(), sess.Document(), sess.Tags.Snapshot(), opts)
	if err != nil {
		return nil, exportError(err)
	}
	return result, nil
}

func (s *Server) session(c echo.Context) (*Session, error) {
	id := c.Param("id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return sess, nil
}

// shapeParam returns the shape id path parameter. Clients usually escape
// the colon of design tool ids.
func shapeParam(c echo.Context) (string, error) {
	id, err := url.PathUnescape(c.Param("shapeId"))
	if err != nil {
		return "", NewBadRequestError("invalid shape id", err)
	}
	return id, nil
}

func readDocument(c echo.Context) (*design.Document, error) {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return nil, httpErr // body limit
		}
		return nil, NewBadRequestError("failed to read body", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, NewBadRequestError("empty document", nil)
	}

	format := design.FormatJSON
	if isYAMLContent(c.Request().Header.Get(echo.HeaderContentType)) {
		format = design.FormatYAML
	}
	doc, err := design.Parse(data, format)
	if err != nil {
		return nil, NewBadRequestError("invalid document", err)
	}
	return doc, nil
}

func sessionInfo(sess *Session) SessionInfo {
	doc := sess.Document()
	info := SessionInfo{
		ID:       sess.ID,
		FileName: doc.FileName,
		PageName: doc.PageName,
		Roots:    len(doc.Shapes),
		Tagged:   sess.Tags.Len(),
	}
	for _, root := range doc.Shapes {
		root.Walk(func(*design.Shape) { info.Shapes++ })
	}
	return info
}

func exportOrder(s string) export.Order {
	return export.Order(strings.ToLower(strings.TrimSpace(s)))
}
