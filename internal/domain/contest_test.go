package domain

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/questx-lab/contest-backoffice/internal/domain/contest"
	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/internal/model"
	"github.com/questx-lab/contest-backoffice/internal/repository"
	"github.com/questx-lab/contest-backoffice/pkg/errorx"
	"github.com/questx-lab/contest-backoffice/pkg/storage"
	"github.com/questx-lab/contest-backoffice/pkg/testutil"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestContestDomain(clock time.Time) *contestDomain {
	d := NewContestDomain(
		repository.NewContestRepository(),
		repository.NewUserRepository(),
		repository.NewContestStatsRepository(),
		&testutil.MockStorage{},
	)
	d.clock = func() time.Time { return clock }
	return d
}

func createTestContest(t *testing.T, ctx context.Context, d *contestDomain) model.Contest {
	resp, err := d.Create(ctx, &model.CreateContestRequest{
		Title:     "Spring contest",
		StartDate: testNow.Add(-time.Hour),
		EndDate:   testNow.Add(24 * time.Hour),
		DrawDate:  testNow.Add(25 * time.Hour),
		Activate:  true,
	})
	require.NoError(t, err)
	return resp.Contest
}

func Test_contestDomain_Create(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.AdminID)
	d := newTestContestDomain(testNow)

	_, err := d.Create(ctx, &model.CreateContestRequest{
		Title:     "Invalid",
		StartDate: testNow,
		EndDate:   testNow.Add(time.Hour),
		DrawDate:  testNow,
	})
	require.ErrorIs(t, err, contest.ErrInvalidSchedule)

	_, err = d.Create(ctx, &model.CreateContestRequest{
		Title:      "Too many winners",
		StartDate:  testNow,
		EndDate:    testNow.Add(time.Hour),
		DrawDate:   testNow.Add(time.Hour),
		MaxWinners: 4,
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	c := createTestContest(t, ctx, d)
	require.Equal(t, string(entity.ContestStatusActive), c.Status)
	require.Equal(t, 3, c.MaxWinners)
	require.Equal(t, testutil.AdminID, c.CreatedBy)
	require.Nil(t, c.MaxParticipants)

	list, err := d.GetList(ctx, &model.GetListContestRequest{Status: "active"})
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Total)
	require.Equal(t, c.ID, list.Contests[0].ID)

	_, err = d.GetList(ctx, &model.GetListContestRequest{Status: "unknown"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	stats, err := repository.NewContestStatsRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalContests)
}

func Test_contestDomain_Update(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.AdminID)
	d := newTestContestDomain(testNow)
	c := createTestContest(t, ctx, d)

	disabled := false
	resp, err := d.Update(ctx, &model.UpdateContestRequest{
		ID:              c.ID,
		Title:           "Renamed",
		AutoDrawEnabled: &disabled,
		Status:          "closed",
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", resp.Contest.Title)
	require.False(t, resp.Contest.AutoDrawEnabled)
	require.Equal(t, "closed", resp.Contest.Status)

	_, err = d.Update(ctx, &model.UpdateContestRequest{ID: c.ID, Status: "active"})
	require.ErrorIs(t, err, contest.ErrInvalidTransition)

	_, err = d.Update(ctx, &model.UpdateContestRequest{ID: c.ID, Status: "completed"})
	require.NoError(t, err)

	_, err = d.Update(ctx, &model.UpdateContestRequest{ID: c.ID, Status: "draft"})
	require.ErrorIs(t, err, contest.ErrInvalidTransition)

	_, err = d.Update(ctx, &model.UpdateContestRequest{ID: "unknown", Title: "x"})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_contestDomain_Update_LostUpdate(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.AdminID)
	d := newTestContestDomain(testNow)
	c := createTestContest(t, ctx, d)
	contestRepo := repository.NewContestRepository()

	stale, err := contestRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)

	_, err = d.Update(ctx, &model.UpdateContestRequest{ID: c.ID, Title: "First"})
	require.NoError(t, err)

	stale.Title = "Second"
	err = saveContest(ctx, contestRepo, repository.NewContestStatsRepository(), stale, repository.StatsDelta{}, testNow)
	require.True(t, errorx.Is(err, errorx.Conflict))

	current, err := contestRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "First", current.Title)
}

func Test_contestDomain_Participants(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.AdminID)
	players := testutil.CreateUsers(ctx, 3)
	d := newTestContestDomain(testNow)
	c := createTestContest(t, ctx, d)

	for _, id := range players {
		resp, err := d.AddParticipant(ctx, &model.AddParticipantRequest{ContestID: c.ID, UserID: id})
		require.NoError(t, err)
		require.True(t, resp.Added)
	}

	resp, err := d.AddParticipant(ctx, &model.AddParticipantRequest{ContestID: c.ID, UserID: players[0]})
	require.NoError(t, err)
	require.False(t, resp.Added)
	require.Equal(t, 3, resp.Contest.CurrentParticipants)
	require.Len(t, resp.Contest.Participants, 3)

	_, err = d.AddParticipant(ctx, &model.AddParticipantRequest{ContestID: c.ID, UserID: "unknown"})
	require.True(t, errorx.Is(err, errorx.NotFound))

	list, err := d.GetListParticipant(ctx, &model.GetListParticipantRequest{Offset: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, list.Participants, 2)
	require.Equal(t, players[1], list.Participants[0].UserID)
	require.Equal(t, c.ID, list.Participants[0].ContestID)

	removed, err := d.RemoveParticipant(ctx, &model.RemoveParticipantRequest{ContestID: c.ID, UserID: players[1]})
	require.NoError(t, err)
	require.True(t, removed.Removed)
	require.Equal(t, 2, removed.Contest.CurrentParticipants)

	removed, err = d.RemoveParticipant(ctx, &model.RemoveParticipantRequest{ContestID: c.ID, UserID: players[1]})
	require.NoError(t, err)
	require.False(t, removed.Removed)

	stats, err := repository.NewContestStatsRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalPlacesSold)

	// Enrollment is closed once the contest ended.
	late := newTestContestDomain(testNow.Add(48 * time.Hour))
	_, err = late.AddParticipant(ctx, &model.AddParticipantRequest{ContestID: c.ID, UserID: players[1]})
	require.ErrorIs(t, err, contest.ErrContestNotOpen)
}

func Test_contestDomain_Winners(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.AdminID)
	players := testutil.CreateUsers(ctx, 5)
	d := newTestContestDomain(testNow)
	c := createTestContest(t, ctx, d)

	for _, id := range players {
		_, err := d.AddParticipant(ctx, &model.AddParticipantRequest{ContestID: c.ID, UserID: id})
		require.NoError(t, err)
	}

	_, err := d.SelectWinner(ctx, &model.SelectWinnerRequest{ContestID: c.ID, UserID: players[0], Position: 1})
	require.ErrorIs(t, err, contest.ErrContestNotFinished)

	finished := newTestContestDomain(testNow.Add(24 * time.Hour))
	winner, err := finished.SelectWinner(ctx, &model.SelectWinnerRequest{
		ContestID: c.ID, UserID: players[0], Position: 2, Notes: "manual",
	})
	require.NoError(t, err)
	require.Equal(t, "Silver", winner.Winner.Prize)
	require.Equal(t, 50.0, winner.Winner.PrizeAmount)
	require.Equal(t, testutil.AdminID, winner.Winner.SelectedBy)

	_, err = finished.SelectWinner(ctx, &model.SelectWinnerRequest{ContestID: c.ID, UserID: players[1], Position: 2})
	require.ErrorIs(t, err, contest.ErrPositionTaken)

	_, err = finished.SelectWinner(ctx, &model.SelectWinnerRequest{ContestID: c.ID, UserID: players[1], Position: 4})
	require.ErrorIs(t, err, contest.ErrInvalidPosition)

	_, err = finished.SelectWinner(ctx, &model.SelectWinnerRequest{ContestID: c.ID, UserID: "user", Position: 1})
	require.ErrorIs(t, err, contest.ErrNotAParticipant)

	multi, err := finished.SelectMultipleWinners(ctx, &model.SelectMultipleWinnersRequest{
		ContestID: c.ID, UserIDs: []string{players[2], players[3], players[4]},
	})
	require.NoError(t, err)
	require.Len(t, multi.Contest.Winners, 3)
	for i, w := range multi.Contest.Winners {
		require.Equal(t, i+1, w.Position)
		require.Equal(t, players[i+2], w.UserID)
	}

	_, err = finished.SelectMultipleWinners(ctx, &model.SelectMultipleWinnersRequest{
		ContestID: c.ID, UserIDs: []string{players[0], players[0]},
	})
	require.ErrorIs(t, err, contest.ErrDuplicateWinner)

	stats, err := repository.NewContestStatsRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalWinners)
	require.Equal(t, 175.0, stats.TotalGains)

	removed, err := finished.RemoveWinner(ctx, &model.RemoveWinnerRequest{ContestID: c.ID, UserID: players[3]})
	require.NoError(t, err)
	require.True(t, removed.Removed)
	require.Len(t, removed.Contest.Winners, 2)
	require.Equal(t, 1, removed.Contest.Winners[0].Position)
	require.Equal(t, 3, removed.Contest.Winners[1].Position)

	// Removing a winning participant also drops its winner entry.
	_, err = finished.RemoveParticipant(ctx, &model.RemoveParticipantRequest{ContestID: c.ID, UserID: players[2]})
	require.NoError(t, err)

	stats, err = repository.NewContestStatsRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalWinners)
	require.Equal(t, 25.0, stats.TotalGains)
	require.Equal(t, int64(4), stats.TotalPlacesSold)

	got, err := d.Get(ctx, &model.GetContestRequest{ID: c.ID})
	require.NoError(t, err)
	require.Len(t, got.Contest.Winners, 1)
	for _, p := range got.Contest.Participants {
		require.Equal(t, p.UserID == players[4], p.IsWinner)
	}
}

func Test_contestDomain_UploadBanner(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.AdminID)
	d := newTestContestDomain(testNow)
	c := createTestContest(t, ctx, d)

	d.storage = &testutil.MockStorage{
		UploadFunc: func(_ context.Context, obj *storage.UploadObject) (*storage.UploadResponse, error) {
			return &storage.UploadResponse{Url: "https://cdn/" + obj.Prefix + "/" + obj.FileName}, nil
		},
	}

	img := new(bytes.Buffer)
	require.NoError(t, png.Encode(img, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("contest_id", c.ID))
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="banner.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploadContestBanner", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.UploadBanner(xcontext.WithHTTPRequest(ctx, req), &model.UploadContestBannerRequest{})
	require.NoError(t, err)
	require.Equal(t, "https://cdn/banners/banner.png", resp.URL)

	got, err := d.Get(ctx, &model.GetContestRequest{ID: c.ID})
	require.NoError(t, err)
	require.Equal(t, resp.URL, got.Contest.BannerURL)
}
