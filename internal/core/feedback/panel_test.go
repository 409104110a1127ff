package feedback

import (
	"context"
	"errors"
	"testing"

	"chuckle-chow/internal/client"
	"chuckle-chow/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	rated       []client.RateRequest
	comments    map[string][]client.Comment
	rateErr     error
	commentsErr error
}

func (f *fakeService) Rate(_ context.Context, req client.RateRequest) error {
	if f.rateErr != nil {
		return f.rateErr
	}
	f.rated = append(f.rated, req)
	f.comments[req.RecipeTitle] = append(f.comments[req.RecipeTitle], client.Comment{Comment: req.Comment})
	return nil
}

func (f *fakeService) Comments(_ context.Context, title string) ([]client.Comment, error) {
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	return f.comments[title], nil
}

func newFake() *fakeService {
	return &fakeService{comments: map[string][]client.Comment{}}
}

func TestRateValidatesWithoutNetwork(t *testing.T) {
	svc := newFake()
	p := NewPanel(svc)

	for _, tc := range []struct {
		title  string
		rating int
	}{
		{"Moonshine Pork", 0},
		{"Moonshine Pork", 6},
		{"   ", 3},
	} {
		err := p.Rate(context.Background(), tc.title, tc.rating, "")
		require.Error(t, err)
		assert.True(t, common.IsValidationError(err))
		assert.Equal(t, MsgInvalidRating, p.State().Error)
	}
	assert.Empty(t, svc.rated)
}

func TestRateReloadsComments(t *testing.T) {
	svc := newFake()
	p := NewPanel(svc)

	require.NoError(t, p.Rate(context.Background(), "Moonshine Pork", 5, "  Dang good  "))
	require.Len(t, svc.rated, 1)
	assert.Equal(t, client.RateRequest{RecipeTitle: "Moonshine Pork", Rating: 5, Comment: "Dang good"}, svc.rated[0])

	s := p.State()
	assert.Empty(t, s.Error)
	assert.Equal(t, "Moonshine Pork", s.Title)
	require.Len(t, s.Comments, 1)
	assert.Equal(t, "Dang good", s.Comments[0].Comment)
}

func TestRateFailure(t *testing.T) {
	svc := newFake()
	svc.rateErr = errors.New("boom")
	p := NewPanel(svc)

	assert.Error(t, p.Rate(context.Background(), "Grits", 3, ""))
	assert.Equal(t, MsgRateFailed, p.State().Error)
}

func TestLoadCommentsFailure(t *testing.T) {
	svc := newFake()
	svc.commentsErr = errors.New("boom")
	p := NewPanel(svc)

	_, err := p.LoadComments(context.Background(), "Grits")
	assert.Error(t, err)
	assert.Equal(t, MsgCommentsFailed, p.State().Error)

	p.Reset()
	assert.Equal(t, State{}, p.State())
}
