package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/models"
)

// ScreeningInput is one screening request: a JD and the résumés to rank
// against it. JobPostingID is only used to tag indexed chunks.
type ScreeningInput struct {
	JobPostingID   string
	JobDescription models.Document
	Resumes        []models.Document
}

// ChunkIndexer receives the embedded chunks of ranked candidates. Failures are
// logged and never affect the screening result.
type ChunkIndexer interface {
	IndexCandidateChunks(ctx context.Context, jobPostingID string, candidates []RankedCandidate) error
}

// Pipeline runs EXTRACT → FILTER → RANK → SCORE for one request. Screen
// never returns an error; early termination is reported on the result.
type Pipeline interface {
	Screen(ctx context.Context, in ScreeningInput) models.ScreeningResult
}

type PipelineOptions struct {
	PoolSize    int
	Filter      ExperienceFilter
	Ranker      RankerConfig
	CurrentDate time.Time
}

func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		PoolSize: 10,
		Filter:   DefaultExperienceFilter(),
		Ranker:   DefaultRankerConfig(),
	}
}

func PipelineOptionsFromConfig(cfg config.PipelineConfig) PipelineOptions {
	return PipelineOptions{
		PoolSize: cfg.PoolSize,
		Filter:   NewExperienceFilter(cfg.MinSlack, cfg.MaxBuffer),
		Ranker: RankerConfig{
			ChunkSize:       cfg.ChunkSize,
			TopK:            cfg.TopK,
			TopN:            cfg.TopN,
			SectionWeight:   cfg.SectionWeight,
			DiversityWeight: cfg.DiversityWeight,
			WordCountWeight: cfg.WordCountWeight,
			WordCountCap:    cfg.WordCountCap,
			DiversityScale:  cfg.DiversityScale,
		},
		CurrentDate: cfg.CurrentDate,
	}
}

type pipeline struct {
	extractor  DocumentExtractor
	experience ExperienceExtractor
	filter     ExperienceFilter
	ranker     SemanticRanker
	scorer     ShortlistScorer
	indexer    ChunkIndexer
	poolSize   int
	log        *zap.Logger
}

func NewPipeline(
	extractor DocumentExtractor,
	experience ExperienceExtractor,
	ranker SemanticRanker,
	scorer ShortlistScorer,
	indexer ChunkIndexer,
	opts PipelineOptions,
	log *zap.Logger,
) Pipeline {
	if opts.PoolSize < 1 {
		opts.PoolSize = 1
	}
	return &pipeline{
		extractor:  extractor,
		experience: experience,
		filter:     opts.Filter,
		ranker:     ranker,
		scorer:     scorer,
		indexer:    indexer,
		poolSize:   opts.PoolSize,
		log:        log.With(zap.String("component", "pipeline")),
	}
}

// NewScreeningPipeline wires the default extractor, experience extractor,
// ranker and scorer over one LLM and one embedding client. indexer may be nil.
func NewScreeningPipeline(llm LLMClient, embedder EmbeddingClient, indexer ChunkIndexer, opts PipelineOptions, log *zap.Logger) Pipeline {
	now := time.Now
	if !opts.CurrentDate.IsZero() {
		fixed := opts.CurrentDate
		now = func() time.Time { return fixed }
	}
	return NewPipeline(
		NewDocumentExtractor(log),
		NewExperienceExtractor(llm, now, log),
		NewSemanticRanker(embedder, NewTextChunker(), opts.Ranker, log),
		NewShortlistScorer(llm, log),
		indexer,
		opts,
		log,
	)
}

type candidateState struct {
	doc        models.CandidateDocument
	experience CandidateOutcome[models.ExperienceRecord]
}

// Screen implements Pipeline.
func (p *pipeline) Screen(ctx context.Context, in ScreeningInput) (result models.ScreeningResult) {
	started := time.Now()
	stats := models.RunStats{FilesReceived: len(in.Resumes)}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("screening panicked", zap.Any("panic", r))
			result = processingError(r, stats)
		}
		metrics.ScreeningRuns.WithLabelValues(string(outcomeOf(result))).Inc()
		p.log.Info("screening finished",
			zap.String("outcome", string(outcomeOf(result))),
			zap.Int("results", len(result.Results)),
			zap.Duration("elapsed", time.Since(started)),
		)
	}()

	if len(in.Resumes) == 0 {
		return emptyResult(MessageNoFiles, stats)
	}

	// EXTRACT
	var (
		jdText     string
		candidates []models.CandidateDocument
	)
	err := p.stage("extract", func() error {
		var err error
		jdText, err = p.extractor.ExtractJobDescription(ctx, in.JobDescription)
		if err != nil {
			return err
		}
		candidates, err = p.extractResumes(ctx, in.Resumes)
		return err
	})
	switch {
	case errors.Is(err, ErrUnreadableJobDescription):
		return errorResult(ErrorUnreadableJD, stats)
	case err != nil:
		return processingError(err, stats)
	}

	stats.CandidatesExtracted = len(candidates)
	stats.SoftFailures += len(in.Resumes) - len(candidates)
	if len(candidates) == 0 {
		return emptyResult(MessageNoValidResumes, stats)
	}

	// FILTER
	var (
		requirement models.JobRequirement
		survivors   []candidateState
	)
	err = p.stage("filter", func() error {
		var states []candidateState
		var err error
		requirement, states, err = p.extractExperience(ctx, jdText, candidates)
		if err != nil {
			return err
		}
		for _, s := range states {
			if s.experience.Failed() {
				stats.SoftFailures++
				metrics.SoftFailures.WithLabelValues("filter", string(s.experience.Kind)).Inc()
				p.log.Warn("experience extraction degraded",
					zap.String("candidate", s.doc.FileReference),
					zap.String("kind", string(s.experience.Kind)),
					zap.Error(s.experience.Err),
				)
			}
			years := s.experience.Value.TotalYears
			if p.filter.Passes(&years, requirement.MinYears, requirement.MaxYears) {
				survivors = append(survivors, s)
			}
		}
		return nil
	})
	if err != nil {
		return processingError(err, stats)
	}

	stats.CandidatesPassedFilter = len(survivors)
	p.log.Info("experience filter applied",
		zap.Any("min_years", requirement.MinYears),
		zap.Any("max_years", requirement.MaxYears),
		zap.Int("passed", len(survivors)),
		zap.Int("total", len(candidates)),
	)
	if len(survivors) == 0 {
		return emptyResult(MessageNoMatches, stats)
	}

	// RANK
	var ranked RankResult
	_ = p.stage("rank", func() error {
		inputs := make([]RankInput, len(survivors))
		for i, s := range survivors {
			inputs[i] = RankInput{Ref: s.doc.FileReference, Text: s.doc.RawText}
		}
		ranked = p.ranker.Rank(ctx, jdText, inputs)
		return nil
	})
	if ranked.Uniform {
		stats.SoftFailures++
	}
	if len(ranked.Shortlist) == 0 {
		return emptyResult(MessageNoValidResumes, stats)
	}
	p.indexChunks(ctx, in.JobPostingID, ranked)

	stats.Shortlisted = len(ranked.Shortlist)

	// SCORE
	byRef := make(map[string]models.ExperienceRecord, len(survivors))
	for _, s := range survivors {
		byRef[s.doc.FileReference] = s.experience.Value
	}

	var results []models.FinalCandidateResult
	err = p.stage("score", func() error {
		scores := make([]ScoreOutcome, len(ranked.Shortlist))
		if err := p.fanOut(len(ranked.Shortlist), func(i int) {
			scores[i] = p.scorer.Score(ctx, jdText, ranked.Shortlist[i].Text)
		}); err != nil {
			return err
		}

		results = make([]models.FinalCandidateResult, len(scores))
		for i, sc := range scores {
			c := ranked.Shortlist[i]
			if sc.Err != nil {
				stats.SoftFailures++
				metrics.SoftFailures.WithLabelValues("score", string(KindOf(sc.Err))).Inc()
				p.log.Warn("scoring degraded", zap.String("candidate", c.Ref), zap.Error(sc.Err))
			}

			exp := byRef[c.Ref]
			email := exp.Email
			if email == nil {
				email = sc.Email
			}
			results[i] = models.FinalCandidateResult{
				ResumeName:      c.Ref,
				CandidateEmail:  email,
				ExperienceYears: exp.TotalYears,
				ATSScore:        sc.Score,
				Strengths:       sc.Strengths,
				Weaknesses:      sc.Weaknesses,
				SemanticScore:   c.Score.WeightedScore,
			}
		}
		sortByATSScore(results)
		return nil
	})
	if err != nil {
		return processingError(err, stats)
	}

	return models.ScreeningResult{Results: results, Stats: stats}
}

func (p *pipeline) extractResumes(ctx context.Context, docs []models.Document) ([]models.CandidateDocument, error) {
	texts := make([]string, len(docs))
	if err := p.fanOut(len(docs), func(i int) {
		texts[i] = p.extractor.ExtractResume(ctx, docs[i])
	}); err != nil {
		return nil, err
	}

	candidates := make([]models.CandidateDocument, 0, len(docs))
	for i, text := range texts {
		if text == "" {
			metrics.SoftFailures.WithLabelValues("extract", string(KindExtraction)).Inc()
			p.log.Warn("dropping resume without text", zap.String("file", docs[i].Name))
			continue
		}
		candidates = append(candidates, models.CandidateDocument{FileReference: docs[i].Name, RawText: text})
	}
	return candidates, nil
}

// extractExperience runs the JD extraction alongside every résumé extraction
// in the same bounded pool.
func (p *pipeline) extractExperience(ctx context.Context, jdText string, candidates []models.CandidateDocument) (models.JobRequirement, []candidateState, error) {
	var requirement models.JobRequirement
	states := make([]candidateState, len(candidates))

	err := p.fanOut(len(candidates)+1, func(i int) {
		if i == len(candidates) {
			requirement = p.experience.ExtractJobRequirement(ctx, jdText)
			return
		}
		c := candidates[i]
		states[i] = candidateState{
			doc:        c,
			experience: p.experience.ExtractResumeExperience(ctx, c.FileReference, c.RawText),
		}
	})
	return requirement, states, err
}

func (p *pipeline) indexChunks(ctx context.Context, jobPostingID string, ranked RankResult) {
	if p.indexer == nil || ranked.Uniform {
		return
	}
	if err := p.indexer.IndexCandidateChunks(ctx, jobPostingID, ranked.Ranked); err != nil {
		p.log.Warn("failed to index candidate chunks", zap.String("job_posting_id", jobPostingID), zap.Error(err))
	}
}

// fanOut runs fn for 0..n-1 with at most poolSize in flight and waits for all
// of them. A panic in fn is returned as an error.
func (p *pipeline) fanOut(n int, fn func(i int)) error {
	var g errgroup.Group
	g.SetLimit(p.poolSize)
	for i := 0; i < n; i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%v", r)
				}
			}()
			fn(i)
			return nil
		})
	}
	return g.Wait()
}

func (p *pipeline) stage(name string, fn func() error) error {
	started := time.Now()
	err := fn()
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())
	if err != nil {
		p.log.Error("stage failed", zap.String("stage", name), zap.Error(err))
	}
	return err
}
