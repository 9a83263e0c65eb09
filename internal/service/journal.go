package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/logging"
	"github.com/user/movielog/internal/metrics"
	"github.com/user/movielog/internal/model"
	"github.com/user/movielog/internal/repository"
)

// DetailsSource 写入新电影时获取详情
type DetailsSource interface {
	FetchDetails(ctx context.Context, externalID int) (*model.MovieDetails, error)
}

// RecordInput 一次观影的用户输入
type RecordInput struct {
	WatchDate model.Date `json:"watch_date"`
	Rating    float64    `json:"rating" validate:"rating"`
	Review    string     `json:"review" validate:"max=500"`
	Location  string     `json:"location" validate:"required,max=100"`
}

// WishlistInput 加入想看
type WishlistInput struct {
	ExternalID int        `json:"external_id" validate:"required,gt=0"`
	AddedDate  model.Date `json:"added_date"`
	Notes      string     `json:"notes" validate:"max=500"`
}

// RecordFilter 记录列表筛选，各条件之间为 AND，同一条件内多个值为 OR
type RecordFilter struct {
	Title     string
	Genres    []string
	Directors []string
	Actors    []string
}

// JournalOptions 观影记录服务配置
type JournalOptions struct {
	RatingScale model.RatingScale
	WebURL      string
	Classifier  LocationClassifier
}

// Journal 观影记录与想看
type Journal struct {
	repos      *repository.Repositories
	details    DetailsSource
	scale      model.RatingScale
	webURL     string
	classifier LocationClassifier
	validate   *validator.Validate
}

// NewJournal details 可为 nil，此时只能记录本地已缓存的电影
func NewJournal(repos *repository.Repositories, details DetailsSource, opts JournalOptions) *Journal {
	if opts.Classifier == nil {
		opts.Classifier = DefaultClassifier()
	}
	if opts.RatingScale == (model.RatingScale{}) {
		opts.RatingScale = model.DefaultRatingScale()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	scale := opts.RatingScale
	if err := v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		return scale.Contains(fl.Field().Float())
	}); err != nil {
		panic(fmt.Sprintf("register rating validator: %v", err))
	}

	return &Journal{
		repos:      repos,
		details:    details,
		scale:      scale,
		webURL:     opts.WebURL,
		classifier: opts.Classifier,
		validate:   v,
	}
}

// RatingScale 当前评分刻度
func (j *Journal) RatingScale() model.RatingScale {
	return j.scale
}

// UpsertMovie 写入电影，已存在时返回原有 ID
func (j *Journal) UpsertMovie(ctx context.Context, details *model.MovieDetails) (int, error) {
	if details == nil || details.ExternalID <= 0 {
		return 0, apperr.Validation("journal.upsert_movie", "movie details with an external id are required")
	}
	return j.repos.Movie.Upsert(ctx, details.ToMovie())
}

// ResolveMovie 本地已缓存时直接使用，否则向目录服务获取详情
func (j *Journal) ResolveMovie(ctx context.Context, externalID int) (*model.MovieDetails, error) {
	if externalID <= 0 {
		return nil, apperr.Validation("journal.resolve", "external id must be positive")
	}
	m, err := j.repos.Movie.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return model.DetailsFromMovie(m), nil
	}
	if j.details == nil {
		return nil, apperr.NotFound("journal.resolve", "movie %d is not cached locally", externalID)
	}
	details, err := j.details.FetchDetails(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, apperr.NotFound("journal.resolve", "movie %d not found", externalID)
	}
	return details, nil
}

// RecordWatch 写入观影记录
//
// 地点文本决定观影方式；同一电影同一天已有记录时返回 KindDuplicate，不覆盖。
// 写入成功时该电影的想看条目在同一事务内被删除。
func (j *Journal) RecordWatch(ctx context.Context, details *model.MovieDetails, in RecordInput) (*repository.InsertResult, error) {
	if details == nil || details.ExternalID <= 0 {
		return nil, apperr.Validation("journal.record", "movie details with an external id are required")
	}
	if err := j.checkRecord(in); err != nil {
		metrics.RecordsWritten.WithLabelValues("invalid").Inc()
		return nil, err
	}

	location := strings.TrimSpace(in.Location)
	rec := &model.WatchRecord{
		WatchDate:        in.WatchDate,
		Rating:           in.Rating,
		Review:           strings.TrimSpace(in.Review),
		LocationCategory: j.classifier.Classify(location),
		LocationDetail:   location,
	}
	return j.insert(ctx, details, rec)
}

// RecordWatchByID 按 TMDB ID 写入观影记录
func (j *Journal) RecordWatchByID(ctx context.Context, externalID int, in RecordInput) (*repository.InsertResult, error) {
	if err := j.checkRecord(in); err != nil {
		metrics.RecordsWritten.WithLabelValues("invalid").Inc()
		return nil, err
	}
	details, err := j.ResolveMovie(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return j.RecordWatch(ctx, details, in)
}

// QuickRecordInput 从票房榜直接记录
type QuickRecordInput struct {
	ExternalID int     `json:"external_id" validate:"required,gt=0"`
	Rating     float64 `json:"rating" validate:"rating"`
	Review     string  `json:"review" validate:"max=500"`
}

// QuickRecordFromRanking 以今天为观影日期、固定的自动地点写入记录，分类为 other
func (j *Journal) QuickRecordFromRanking(ctx context.Context, in QuickRecordInput) (*repository.InsertResult, error) {
	if err := j.validate.Struct(in); err != nil {
		metrics.RecordsWritten.WithLabelValues("invalid").Inc()
		return nil, j.validationErr("journal.quick_record", err)
	}
	details, err := j.ResolveMovie(ctx, in.ExternalID)
	if err != nil {
		return nil, err
	}
	rec := &model.WatchRecord{
		WatchDate:        model.Today(),
		Rating:           in.Rating,
		Review:           strings.TrimSpace(in.Review),
		LocationCategory: model.LocationOther,
		LocationDetail:   model.SyntheticLocationBoxOffice,
	}
	return j.insert(ctx, details, rec)
}

func (j *Journal) insert(ctx context.Context, details *model.MovieDetails, rec *model.WatchRecord) (*repository.InsertResult, error) {
	log := logging.Component("journal")
	res, err := j.repos.WatchRecord.Insert(ctx, details.ToMovie(), rec)
	if err != nil {
		if apperr.IsKind(err, apperr.KindDuplicate) {
			metrics.RecordsWritten.WithLabelValues("duplicate").Inc()
			log.Info().Int("external_id", details.ExternalID).Str("date", rec.WatchDate.String()).Msg("[Journal] 重复记录已跳过")
		} else {
			log.Error().Err(err).Int("external_id", details.ExternalID).Msg("[Journal] 写入观影记录失败")
		}
		return nil, err
	}
	metrics.RecordsWritten.WithLabelValues("created").Inc()
	log.Debug().Int("record_id", res.RecordID).Bool("wishlist_consumed", res.WishlistConsumed).Msg("[Journal] 写入观影记录")
	return res, nil
}

// UpdateReview 修改短评
func (j *Journal) UpdateReview(ctx context.Context, recordID int, review string) error {
	review = strings.TrimSpace(review)
	if err := j.validate.Var(review, "max=500"); err != nil {
		return j.validationErr("journal.update_review", err)
	}
	return j.repos.WatchRecord.UpdateReview(ctx, recordID, review)
}

// DeleteRecord 删除记录，不存在时返回 KindNotFound
func (j *Journal) DeleteRecord(ctx context.Context, recordID int) error {
	return j.repos.WatchRecord.Delete(ctx, recordID)
}

// Records 全部记录（联表），按筛选条件过滤
func (j *Journal) Records(ctx context.Context, filter RecordFilter) ([]*model.RecordView, error) {
	views, err := j.repos.WatchRecord.ListJoined(ctx, j.webURL)
	if err != nil {
		return nil, err
	}
	return filter.Apply(views), nil
}

// RecordsInPeriod 半开区间 [start, end) 内的记录
func (j *Journal) RecordsInPeriod(ctx context.Context, start, end model.Date) ([]*model.RecordView, error) {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return nil, apperr.Validation("journal.period", "period start %s must be before end %s", start, end)
	}
	return j.repos.WatchRecord.ListInPeriod(ctx, start, end, j.webURL)
}

// RecentLocations 最近 / 常用地点
func (j *Journal) RecentLocations(ctx context.Context, q repository.LocationQuery) ([]string, error) {
	return j.repos.WatchRecord.DistinctLocations(ctx, q)
}

// AddToWishlist 加入想看，重复时返回 KindDuplicate
func (j *Journal) AddToWishlist(ctx context.Context, in WishlistInput) (int, error) {
	if err := j.validate.Struct(in); err != nil {
		return 0, j.validationErr("journal.wishlist_add", err)
	}
	details, err := j.ResolveMovie(ctx, in.ExternalID)
	if err != nil {
		return 0, err
	}
	added := in.AddedDate
	if added.IsZero() {
		added = model.Today()
	}
	entry := &model.WishlistEntry{AddedDate: added, Notes: strings.TrimSpace(in.Notes)}
	return j.repos.Wishlist.Add(ctx, details.ToMovie(), entry)
}

// RemoveFromWishlist 删除想看条目
func (j *Journal) RemoveFromWishlist(ctx context.Context, wishlistID int) error {
	return j.repos.Wishlist.Remove(ctx, wishlistID)
}

// Wishlist 想看列表
func (j *Journal) Wishlist(ctx context.Context) ([]*model.WishlistEntry, error) {
	return j.repos.Wishlist.List(ctx)
}

// PromoteWishlist 想看转为观影记录；记录重复时想看条目保留
func (j *Journal) PromoteWishlist(ctx context.Context, wishlistID int, in RecordInput) (*repository.InsertResult, error) {
	entry, err := j.repos.Wishlist.FindByID(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.Movie == nil {
		return nil, apperr.NotFound("journal.promote", "wishlist entry %d not found", wishlistID)
	}
	return j.promote(ctx, entry, in)
}

// promote 条目可能在查找之后被删除，此时记录照常提交，WishlistConsumed 为 false
func (j *Journal) promote(ctx context.Context, entry *model.WishlistEntry, in RecordInput) (*repository.InsertResult, error) {
	res, err := j.RecordWatch(ctx, model.DetailsFromMovie(entry.Movie), in)
	if err != nil {
		return nil, err
	}
	if !res.WishlistConsumed {
		logging.Component("journal").Warn().
			Int("wishlist_id", entry.ID).
			Int("record_id", res.RecordID).
			Msg("[Journal] 想看条目已被删除，观影记录已写入")
	}
	return res, nil
}

func (j *Journal) checkRecord(in RecordInput) error {
	if in.WatchDate.IsZero() {
		return apperr.Validation("journal.record", "watch date is required")
	}
	if err := j.validate.Struct(in); err != nil {
		return j.validationErr("journal.record", err)
	}
	return nil
}

// validationErr 把 validator 的错误转为可读的校验错误
func (j *Journal) validationErr(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(op, "%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "rating":
			r, _ := fe.Value().(float64)
			if verr := j.scale.Validate(r); verr != nil {
				msgs = append(msgs, verr.Error())
			} else {
				msgs = append(msgs, fmt.Sprintf("rating %v is not valid", fe.Value()))
			}
		case "required":
			msgs = append(msgs, strings.ToLower(fe.Field())+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", strings.ToLower(fe.Field()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return apperr.Validation(op, "%s", strings.Join(msgs, "; "))
}

// Apply 过滤记录
func (f RecordFilter) Apply(views []*model.RecordView) []*model.RecordView {
	title := strings.ToLower(strings.TrimSpace(f.Title))
	out := make([]*model.RecordView, 0, len(views))
	for _, v := range views {
		if title != "" &&
			!strings.Contains(strings.ToLower(v.Title), title) &&
			!strings.Contains(strings.ToLower(v.OriginalTitle), title) {
			continue
		}
		if len(f.Genres) > 0 && !anyIn(v.GenreNames, f.Genres) {
			continue
		}
		if len(f.Directors) > 0 && !anyIn([]string{v.Director}, f.Directors) {
			continue
		}
		if len(f.Actors) > 0 && !anyIn(splitActors(v.Actors), f.Actors) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func anyIn(values, wanted []string) bool {
	for _, v := range values {
		for _, w := range wanted {
			if strings.EqualFold(v, strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

func splitActors(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
