package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/boxscore"
	"github.com/fortuna/themis/internal/league"
)

// S3Archive stores raw box-score documents and normalized player data
// in a bucket. Uploads are fire-and-forget from the pipeline's point of
// view; the averages collector reads the player objects back.
type S3Archive struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

func NewS3Archive(client *s3.Client, bucket string, logger *zap.Logger) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, logger: logger}
}

func boxscoreKey(lg league.League, gameID string) string {
	slug := strings.ToUpper(lg.Slug)
	return fmt.Sprintf("%s/%s_BOXSCORES/boxscore_%s.json", slug, slug, gameID)
}

func playersKey(lg league.League, gameID string) string {
	return fmt.Sprintf("%s/PLAYERDATA/players_%s.json", strings.ToUpper(lg.Slug), gameID)
}

func playersPrefix(lg league.League) string {
	return strings.ToUpper(lg.Slug) + "/PLAYERDATA/"
}

// ArchiveGame uploads the raw document and the normalized players for
// one game.
func (a *S3Archive) ArchiveGame(ctx context.Context, lg league.League, gameID string, doc map[string]interface{}, players []boxscore.PlayerSnapshot) error {
	if err := a.putJSON(ctx, boxscoreKey(lg, gameID), doc); err != nil {
		return errors.Wrap(err, "uploading raw box score")
	}
	if err := a.putJSON(ctx, playersKey(lg, gameID), players); err != nil {
		return errors.Wrap(err, "uploading player data")
	}
	a.logger.Debug("archived game",
		zap.String("league", lg.Slug),
		zap.String("game_id", gameID))
	return nil
}

// LoadPlayers reads one game's archived player snapshots back.
func (a *S3Archive) LoadPlayers(ctx context.Context, lg league.League, gameID string) ([]boxscore.PlayerSnapshot, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(playersKey(lg, gameID)),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching player data for game %s", gameID)
	}
	defer out.Body.Close()

	var players []boxscore.PlayerSnapshot
	if err := json.NewDecoder(out.Body).Decode(&players); err != nil {
		return nil, errors.Wrap(err, "decoding archived player data")
	}
	return players, nil
}

// ListPlayerGames returns the game ids with archived player data for a
// league, newest keys last in lexical order.
func (a *S3Archive) ListPlayerGames(ctx context.Context, lg league.League) ([]string, error) {
	prefix := playersPrefix(lg)
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})

	var gameIDs []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "listing archived player data")
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimPrefix(key, prefix)
			name = strings.TrimPrefix(name, "players_")
			name = strings.TrimSuffix(name, ".json")
			if name != "" {
				gameIDs = append(gameIDs, name)
			}
		}
	}
	return gameIDs, nil
}

func (a *S3Archive) putJSON(ctx context.Context, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	return err
}
