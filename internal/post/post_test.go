package post

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/dict"
)

type keyTr struct{}

func (keyTr) T(k string) string { return k }

type fakeRequester struct {
	reqs []api.Request
	resp any
	err  error
}

func (f *fakeRequester) Do(_ context.Context, req api.Request, out any) error {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return f.err
	}
	if out != nil && f.resp != nil {
		b, _ := json.Marshal(f.resp)
		return json.Unmarshal(b, out)
	}
	return nil
}

func statusDict() *dict.Cache {
	c := dict.New(dict.Options{Logger: zap.NewNop()})
	c.Replace(dict.Dict{StatusDictType: {
		{Label: "开启", Value: "0", ColorType: "primary"},
		{Label: "关闭", Value: "1", ColorType: "info"},
	}})
	return c
}

func intp(v int) *int { return &v }

func TestBuildSchema_StatusOptionsFromDict(t *testing.T) {
	s := BuildSchema(keyTr{}, statusDict())

	require.Len(t, s.Search, 3)
	require.Equal(t, []Option{{Label: "开启", Value: "0"}, {Label: "关闭", Value: "1"}}, s.Search[2].Options)

	var statusCol *Column
	for i := range s.Columns {
		if s.Columns[i].Field == "status" {
			statusCol = &s.Columns[i]
		}
	}
	require.NotNil(t, statusCol)
	require.Equal(t, "CellDict", statusCol.CellRender.Name)
	require.Equal(t, StatusDictType, statusCol.CellRender.Props["type"])

	require.True(t, s.Modal[0].Hidden)
	require.Equal(t, "required", s.Modal[1].Rules)
}

func TestBuildSchema_EmptyDict(t *testing.T) {
	s := BuildSchema(keyTr{}, dict.New(dict.Options{Logger: zap.NewNop()}))
	require.Empty(t, s.Search[2].Options)
}

func TestSaveReq_Validate(t *testing.T) {
	req := SaveReq{Name: " ", Code: "ceo"}
	err := req.Validate(nil)
	require.True(t, IsValidation(err))
	ve := err.(*ValidationError)
	require.Equal(t, "required", ve.Fields["name"])
	require.Equal(t, "required", ve.Fields["sort"])
	require.Equal(t, "required", ve.Fields["status"])
	require.NotContains(t, ve.Fields, "code")

	ok := SaveReq{Name: "CEO", Code: "ceo", Sort: intp(0), Status: intp(0)}
	require.NoError(t, ok.Validate(nil))
}

func TestService_ListDecorates(t *testing.T) {
	r := &fakeRequester{resp: Page{List: []Post{{ID: 1, Name: "CEO", Status: 0}, {ID: 2, Name: "X", Status: 9}}, Total: 2}}
	s := NewService(r, statusDict())

	page, err := s.List(context.Background(), PageParam{Name: " CEO ", Status: intp(0)})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)
	require.Equal(t, "开启", page.List[0].StatusLabel)
	require.Equal(t, "primary", page.List[0].StatusColor)
	require.Empty(t, page.List[1].StatusLabel)

	q := r.reqs[0].Query
	require.Equal(t, "1", q.Get("pageNo"))
	require.Equal(t, "10", q.Get("pageSize"))
	require.Equal(t, "CEO", q.Get("name"))
	require.Equal(t, "0", q.Get("status"))
}

func TestService_CreateRejectsUnknownStatus(t *testing.T) {
	r := &fakeRequester{resp: 10}
	s := NewService(r, statusDict())

	_, err := s.Create(context.Background(), SaveReq{Name: "CEO", Code: "ceo", Sort: intp(1), Status: intp(7)})
	require.True(t, IsValidation(err))
	require.Empty(t, r.reqs)

	id, err := s.Create(context.Background(), SaveReq{Name: "CEO", Code: "ceo", Sort: intp(1), Status: intp(0)})
	require.NoError(t, err)
	require.Equal(t, int64(10), id)
	require.Equal(t, http.MethodPost, r.reqs[0].Method)
	require.Equal(t, "/admin-api/system/post/create", r.reqs[0].Path)
}

func TestService_UpdateAndDelete(t *testing.T) {
	r := &fakeRequester{}
	s := NewService(r, statusDict())

	require.True(t, IsValidation(s.Update(context.Background(), SaveReq{Name: "a"})))
	require.NoError(t, s.Update(context.Background(), SaveReq{ID: 3, Name: "a", Code: "b", Sort: intp(1), Status: intp(1)}))
	require.Equal(t, http.MethodPut, r.reqs[0].Method)

	require.Error(t, s.Delete(context.Background(), 0))
	require.NoError(t, s.Delete(context.Background(), 3))
	require.Equal(t, "3", r.reqs[1].Query.Get("id"))
}
