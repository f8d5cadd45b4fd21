package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/lookdex/internal/db"
	"github.com/kailas-cloud/lookdex/internal/domain"
	"github.com/kailas-cloud/lookdex/internal/domain/field"
	"github.com/kailas-cloud/lookdex/internal/domain/search/clause"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Ping(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Fatalf("expected db.Error PING, got %v", err)
	}
}

func TestNewStore_Defaults(t *testing.T) {
	s := newStore(nil, "", "")
	if s.Index() != DefaultIndex || s.Prefix() != DefaultPrefix {
		t.Errorf("index=%q prefix=%q", s.Index(), s.Prefix())
	}
	if s.id(s.key("42")) != "42" {
		t.Error("key/id should round-trip")
	}
}

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error")
	}
}

// --- hash.go tests ---

func TestPut_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
			for _, cmd := range cmds {
				args := cmd.Commands()
				if args[0] != "HSET" || !strings.HasPrefix(args[1], DefaultPrefix) {
					t.Errorf("unexpected command %v", args)
				}
			}
			return []rueidis.RedisResult{
				mock.Result(mock.RedisInt64(2)),
				mock.Result(mock.RedisInt64(2)),
			}
		})

	s := NewStoreForTest(c)
	err := s.Put(context.Background(), []db.Record{
		{ID: "1", Fields: map[string]string{field.NodeID: "1"}},
		{ID: "2", Fields: map[string]string{field.NodeID: "2"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPut_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.ErrorResult(context.DeadlineExceeded)})

	s := NewStoreForTest(c)
	err := s.Put(context.Background(), []db.Record{{ID: "1", Fields: map[string]string{"f": "v"}}})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpHSet {
		t.Fatalf("expected db.Error HSET, got %v", err)
	}
}

func TestPut_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	if err := s.Put(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "look:doc:1", "look:doc:2")).
		Return(mock.Result(mock.RedisInt64(2)))

	s := NewStoreForTest(c)
	if err := s.Delete(context.Background(), "1", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetch_HMGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
			want := []string{"HMGET", "look:doc:7", field.Name, field.Date}
			got := cmds[0].Commands()
			if strings.Join(got, " ") != strings.Join(want, " ") {
				t.Errorf("command = %v, want %v", got, want)
			}
			return []rueidis.RedisResult{
				mock.Result(mock.RedisArray(mock.RedisString("Home"), mock.RedisNil())),
				mock.Result(mock.RedisArray(mock.RedisNil(), mock.RedisNil())),
			}
		})

	s := NewStoreForTest(c)
	got, err := s.Fetch(context.Background(), []string{"7", "8"}, []string{field.Name, field.Date})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0][field.Name] != "Home" {
		t.Errorf("got[0] = %v", got[0])
	}
	if _, ok := got[0][field.Date]; ok {
		t.Error("nil field should be absent")
	}
	if len(got[1]) != 0 {
		t.Errorf("missing document should be empty, got %v", got[1])
	}
}

func TestFetch_AllFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				field.Name: mock.RedisString("Home"),
			})),
		})

	s := NewStoreForTest(c)
	got, err := s.Fetch(context.Background(), []string{"7"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0][field.Name] != "Home" {
		t.Errorf("got %v", got)
	}
}

// --- index.go tests ---

func TestEnsureIndex_Creates(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "look")).
			Return(mock.Result(mock.RedisError("Unknown index name"))),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
				joined := strings.Join(cmd, " ")
				return cmd[0] == "FT.CREATE" &&
					strings.Contains(joined, "ON HASH PREFIX 1 look:doc: SCHEMA") &&
					strings.Contains(joined, field.SortDate+" NUMERIC SORTABLE") &&
					strings.Contains(joined, field.Tags+" TAG SEPARATOR   CASESENSITIVE")
			})).
			Return(mock.Result(mock.RedisString("OK"))),
	)

	s := NewStoreForTest(c)
	def := db.LookIndex("look", "look:doc:").MustBuild()
	if err := s.EnsureIndex(context.Background(), def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_Exists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "look")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("look"))))

	s := NewStoreForTest(c)
	if err := s.EnsureIndex(context.Background(), db.LookIndex("look").MustBuild()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_RaceAlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "look")).
		Return(mock.Result(mock.RedisError("Unknown index name")))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.CREATE" })).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	if err := s.EnsureIndex(context.Background(), db.LookIndex("look").MustBuild()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "look")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.EnsureIndex(context.Background(), db.LookIndex("look").MustBuild())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpIndexInfo {
		t.Fatalf("expected db.Error FT.INFO, got %v", err)
	}
}

func TestDropIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "test:idx")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "test:idx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "test:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	err := s.DropIndex(context.Background(), "test:idx")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestBuildCreateArgs_Validation(t *testing.T) {
	_, err := buildCreateArgs(&db.IndexDefinition{Name: "", Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}}})
	if err == nil {
		t.Error("expected error for empty name")
	}

	_, err = buildCreateArgs(&db.IndexDefinition{Name: "test"})
	if err == nil {
		t.Error("expected error for empty fields")
	}
}

func TestBuildFieldArgs_AllTypes(t *testing.T) {
	tests := []struct {
		field db.IndexField
		want  string
	}{
		{db.IndexField{Name: "n", Type: db.IndexFieldNumeric}, "n NUMERIC"},
		{db.IndexField{Name: "n", Type: db.IndexFieldNumeric, Sortable: true}, "n NUMERIC SORTABLE"},
		{db.IndexField{Name: "t", Type: db.IndexFieldText}, "t TEXT"},
		{db.IndexField{Name: "g", Type: db.IndexFieldTag}, "g TAG CASESENSITIVE"},
		{db.IndexField{Name: "g", Type: db.IndexFieldTag, TagSeparator: "|"}, "g TAG SEPARATOR | CASESENSITIVE"},
	}
	for _, tc := range tests {
		args, err := buildFieldArgs(&tc.field)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.Join(args, " "); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
	if _, err := buildFieldArgs(&db.IndexField{Name: "x", Type: db.IndexFieldType(99)}); err == nil {
		t.Error("expected error for unknown type")
	}
}

// --- search.go tests ---

func TestSearch_IDsAndScores(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "look", "@Look_Type:{content}",
			"NOCONTENT", "WITHSCORES",
			"SORTBY", field.SortDate, "DESC",
			"LIMIT", "0", "10", "DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("look:doc:1"), mock.RedisString("1.5"),
			mock.RedisString("look:doc:2"), mock.RedisString("0.5"),
		)))

	s := NewStoreForTest(c)
	p, err := s.Prepare(clause.Term{Field: field.ItemType, Value: "content"})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	res, err := s.Search(context.Background(), &db.SearchRequest{
		Query: p, Sort: []db.SortField{{Field: field.SortDate, Desc: true}}, Limit: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("total=%d entries=%d", res.Total, len(res.Entries))
	}
	if res.Entries[0].ID != "1" || res.Entries[0].Score != 1.5 {
		t.Errorf("entry[0] = %+v", res.Entries[0])
	}
}

func TestSearch_WithFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "look", "*",
			"RETURN", "2", field.Latitude, field.Longitude, "WITHSCORES",
			"LIMIT", "5", "5", "DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(6),
			mock.RedisString("look:doc:9"), mock.RedisString("1"),
			mock.RedisArray(
				mock.RedisString(field.Latitude), mock.RedisString("51.5"),
				mock.RedisString(field.Longitude), mock.RedisString("-0.1"),
			),
		)))

	s := NewStoreForTest(c)
	p, _ := s.Prepare(clause.All{})
	res, err := s.Search(context.Background(), &db.SearchRequest{
		Query: p, Offset: 5, Limit: 5, Fields: []string{field.Latitude, field.Longitude},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 6 || len(res.Entries) != 1 {
		t.Fatalf("total=%d entries=%d", res.Total, len(res.Entries))
	}
	if res.Entries[0].ID != "9" || res.Entries[0].Fields[field.Latitude] != "51.5" {
		t.Errorf("entry = %+v", res.Entries[0])
	}
}

func TestSearch_CountOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "look", "*", "NOCONTENT", "LIMIT", "0", "0", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	s := NewStoreForTest(c)
	p, _ := s.Prepare(clause.All{})
	res, err := s.Search(context.Background(), &db.SearchRequest{Query: p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 42 || len(res.Entries) != 0 {
		t.Errorf("total=%d entries=%d", res.Total, len(res.Entries))
	}
}

func TestSearch_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	p, _ := s.Prepare(clause.All{})
	_, err := s.Search(context.Background(), &db.SearchRequest{Query: p, Limit: 1})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearch {
		t.Fatalf("expected db.Error FT.SEARCH, got %v", err)
	}
}

func TestSearch_ForeignPrepared(t *testing.T) {
	s := NewStoreForTest(nil)
	if _, err := s.Search(context.Background(), &db.SearchRequest{Query: nil}); err == nil {
		t.Fatal("expected error")
	}
}

// --- render.go tests ---

func TestRender(t *testing.T) {
	lo, hi := 1.0, 2.0
	exclusive, _ := clause.NewRange(&lo, nil, &hi, nil)
	open, _ := clause.NewRange(nil, &lo, nil, nil)

	tests := []struct {
		name string
		node clause.Node
		want string
	}{
		{"all", clause.All{}, "*"},
		{"term", clause.Term{Field: field.Tags, Value: "colour:red"}, `@Look_Tags:{colour\:red}`},
		{"marker", clause.Term{Field: field.TagGroup("colour"), Value: field.MarkerValue}, `@Look_Tags:{colour\:*}`},
		{"text", clause.Text{Field: field.Text, Text: "hello"}, "@Look_Text:(hello)"},
		{"text multi", clause.Text{Field: field.Text, Text: "hello world"}, "@Look_Text:(hello | world)"},
		{"fuzzy 1", clause.Text{Field: field.Text, Text: "hello", Fuzziness: 1}, "@Look_Text:(%hello%)"},
		{"fuzzy 2", clause.Text{Field: field.Text, Text: "hello", Fuzziness: 2}, "@Look_Text:(%%hello%%)"},
		{"prefix", clause.Prefix{Field: field.SortName, Prefix: "ab c"}, `@__Sort_Look_Name:{ab\ c*}`},
		{"suffix", clause.Wildcard{Field: field.SortName, Pattern: "*pie"}, "@__Sort_Look_Name:{*pie}"},
		{"infix", clause.Wildcard{Field: field.SortName, Pattern: "*a.b*"}, `@__Sort_Look_Name:{*a\.b*}`},
		{"between", clause.Numeric{Field: field.NodeID, Range: clause.Between(5, 5)}, "@__NodeId:[5 5]"},
		{"exclusive", clause.Numeric{Field: "n", Range: exclusive}, "@n:[(1 (2]"},
		{"open", clause.Numeric{Field: "n", Range: open}, "@n:[1 +inf]"},
		{"raw", clause.Raw{Query: "@Look_Name:{x}"}, "(@Look_Name:{x})"},
		{"and", clause.And(clause.Term{Field: "a", Value: "1"}, clause.Term{Field: "b", Value: "2"}), "(@a:{1} @b:{2})"},
		{"or", clause.Or(clause.Term{Field: "a", Value: "1"}, clause.Term{Field: "a", Value: "2"}), "(@a:{1} | @a:{2})"},
		{"not", clause.Not(clause.Term{Field: "a", Value: "1"}), "-@a:{1}"},
		{
			"mixed",
			clause.And(
				clause.Term{Field: "a", Value: "1"},
				clause.Or(clause.Term{Field: "b", Value: "1"}, clause.Term{Field: "b", Value: "2"}),
				clause.Not(clause.Term{Field: "c", Value: "1"}),
			),
			"(@a:{1} (@b:{1} | @b:{2}) -@c:{1})",
		},
	}

	s := NewStoreForTest(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := s.Prepare(tc.node)
			if err != nil {
				t.Fatalf("Prepare: %v", err)
			}
			if got := p.(*prepared).String(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
			if p.Clause() == nil {
				t.Error("prepared should keep its clause")
			}
		})
	}
}

func TestPrepare_MalformedRaw(t *testing.T) {
	s := NewStoreForTest(nil)
	for _, q := range []string{"(a", "a)", `"open`, "{x]", `trailing\`} {
		_, err := s.Prepare(clause.And(clause.All{}, clause.Raw{Query: q}))
		if !errors.Is(err, domain.ErrMalformedQuery) {
			t.Errorf("Prepare(%q) err = %v, want ErrMalformedQuery", q, err)
		}
	}
}

func TestValidateRaw_Valid(t *testing.T) {
	for _, q := range []string{"", "@a:{x}", `@a:{x\}y}`, `"(quoted"`, "(a | (b c)) -[1 2]"} {
		if err := validateRaw(q); err != nil {
			t.Errorf("validateRaw(%q) = %v", q, err)
		}
	}
}
