package search_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/search"
	"github.com/agbru/parsearch/internal/search/mocks"
)

// reportMatcher matches a Report on its result fields only.
type reportMatcher struct {
	found   bool
	workers int
}

func (m reportMatcher) Matches(x interface{}) bool {
	r, ok := x.(search.Report)
	return ok && r.Found == m.found && r.Workers == m.workers
}

func (m reportMatcher) String() string {
	return "report with matching result"
}

func TestSearcherNotifiesObserverOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	obs := mocks.NewMockObserver(ctrl)
	obs.EXPECT().SearchCompleted(reportMatcher{found: true, workers: 2}, nil).Times(1)

	s := search.New(search.WithObserver(obs))
	report, err := search.Run(context.Background(), s, 4, search.Slice[int]{1, 2, 3, 4}, 2, search.Equal[int])

	require.NoError(t, err)
	assert.True(t, report.Found)
}

func TestSearcherNotifiesObserverOnConfigError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	obs := mocks.NewMockObserver(ctrl)
	obs.EXPECT().SearchCompleted(gomock.Any(), gomock.Any()).Do(func(_ search.Report, err error) {
		assert.True(t, apperrors.IsConfigError(err))
	}).Times(1)

	s := search.New(search.WithObserver(obs))
	_, err := search.Run(context.Background(), s, 4, search.Slice[int]{1, 2, 3}, 2, search.Equal[int])
	require.Error(t, err)
}

func TestObserversFanOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockObserver(ctrl)
	second := mocks.NewMockObserver(ctrl)
	gomock.InOrder(
		first.EXPECT().SearchCompleted(gomock.Any(), nil),
		second.EXPECT().SearchCompleted(gomock.Any(), nil),
	)

	search.Observers{first, second}.SearchCompleted(search.Report{}, nil)
}

func TestWithObserverCombinesObservers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockObserver(ctrl)
	second := mocks.NewMockObserver(ctrl)
	third := mocks.NewMockObserver(ctrl)
	gomock.InOrder(
		first.EXPECT().SearchCompleted(reportMatcher{found: false, workers: 1}, nil),
		second.EXPECT().SearchCompleted(reportMatcher{found: false, workers: 1}, nil),
		third.EXPECT().SearchCompleted(reportMatcher{found: false, workers: 1}, nil),
	)

	s := search.New(search.WithObserver(first), search.WithObserver(second), search.WithObserver(third))
	report, err := search.Run(context.Background(), s, 9, search.Slice[int]{1, 2}, 1, search.Equal[int])

	require.NoError(t, err)
	assert.False(t, report.Found)
}
