package experiment_test

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/anombench/internal/config"
	"github.com/san-kum/anombench/internal/dataset"
	"github.com/san-kum/anombench/internal/diffusion"
	"github.com/san-kum/anombench/internal/experiment"
	"github.com/san-kum/anombench/internal/forest"
	"github.com/san-kum/anombench/internal/models"
	"github.com/san-kum/anombench/internal/storage"
)

type countingGenerator struct {
	diffusion.Generator
	calls *atomic.Int64
}

func (g countingGenerator) Generate(rng *rand.Rand, alpha float64, tMax int) (diffusion.Trajectory, error) {
	g.calls.Add(1)
	return g.Generator.Generate(rng, alpha, tMax)
}

func countingRegistry(calls *atomic.Int64) *experiment.Registry {
	reg := experiment.NewRegistry()
	reg.Register("fbm", func() diffusion.Generator {
		return countingGenerator{Generator: models.NewFBM(), calls: calls}
	})
	return reg
}

func smallConfig() *config.Config {
	cfg := config.GetPreset("regression", "fbm-small")
	cfg.Forest.NEstimators = 10
	cfg.Workers = 2
	return cfg
}

var _ = Describe("Experiment", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("regression on fbm", func() {
		It("splits 24/6 and bins errors into one bin per exponent", func() {
			out, err := experiment.New(smallConfig()).Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(out.TrainSize).To(Equal(24))
			Expect(out.TestSize).To(Equal(6))
			Expect(out.RatioAN).To(BeNumerically("~", 1.0/3, 1e-12))

			res := out.Result
			Expect(res.Mode).To(Equal(diffusion.Regression))
			Expect(res.Histogram).To(HaveLen(3))
			sum := 0.0
			for _, m := range res.Histogram {
				sum += m
			}
			Expect(sum).To(BeNumerically("~", 1.0, 1e-9))
			Expect(res.MSE).To(BeNumerically(">=", 0))
			Expect(res.MAE).To(BeNumerically(">=", 0))
			Expect(res.MAE * res.MAE).To(BeNumerically("<=", res.MSE+1e-12))
		})

		It("is reproducible for a fixed seed", func() {
			a, err := experiment.New(smallConfig()).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			cfg := smallConfig()
			cfg.Workers = 1
			b, err := experiment.New(cfg).Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Result.Predictions).To(Equal(a.Result.Predictions))
			Expect(b.Result.MSE).To(Equal(a.Result.MSE))
		})

		It("labels test samples with their generating exponent", func() {
			out, err := experiment.New(smallConfig()).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, y := range out.Result.Truth {
				Expect([]float64{0.5, 1.0, 1.5}).To(ContainElement(y))
			}
		})
	})

	Describe("configuration errors", func() {
		It("rejects a split ratio of 1.5 before generating anything", func() {
			var calls atomic.Int64
			cfg := smallConfig()
			cfg.Ratio = 1.5

			_, err := experiment.New(cfg, experiment.WithRegistry(countingRegistry(&calls))).Run(ctx)
			Expect(errors.Is(err, diffusion.ErrConfiguration)).To(BeTrue())
			Expect(calls.Load()).To(BeZero())

			var se *diffusion.StageError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Stage).To(Equal(diffusion.StageConfig))
			Expect(se.Param).To(Equal("ratio_tT"))
		})

		It("rejects an exponent the model cannot produce", func() {
			cfg := smallConfig()
			cfg.Processes = []string{"ctrw"}
			cfg.Alphas = []float64{0.5, 1.5}

			_, err := experiment.New(cfg).Run(ctx)
			Expect(errors.Is(err, diffusion.ErrConfiguration)).To(BeTrue())
		})

		It("rejects an unknown model", func() {
			cfg := smallConfig()
			cfg.Processes = []string{"levy-flight"}

			_, err := experiment.New(cfg).Run(ctx)
			Expect(errors.Is(err, diffusion.ErrConfiguration)).To(BeTrue())
		})

		It("does not see later changes to the caller's config", func() {
			cfg := smallConfig()
			exp := experiment.New(cfg)
			cfg.Ratio = 1.5

			_, err := exp.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("classification", func() {
		It("discriminates fbm from sbm", func() {
			cfg := smallConfig()
			cfg.Mode = string(diffusion.Discrimination)
			cfg.Processes = []string{"fbm", "sbm"}
			cfg.Alphas = []float64{0.5, 1.5}

			out, err := experiment.New(cfg).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.TrainSize).To(Equal(32))
			Expect(out.TestSize).To(Equal(8))
			Expect(out.Result.Classes).To(Equal([]string{"fbm", "sbm"}))
			Expect(out.Result.Confusion).To(HaveLen(2))
			Expect(out.Result.Accuracy).To(BeNumerically(">=", 0))
			Expect(out.Result.Accuracy).To(BeNumerically("<=", 1))
		})

		It("separates normal from anomalous diffusion", func() {
			cfg := smallConfig()
			cfg.Mode = string(diffusion.Anomaly)

			out, err := experiment.New(cfg).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Result.Classes).To(Equal(diffusion.AnomalyClasses))

			total := 0
			for _, row := range out.Result.Confusion {
				for _, n := range row {
					total += n
				}
			}
			Expect(total).To(Equal(6))
		})
	})

	Describe("trajectory cache", func() {
		It("serves the second run from disk", func() {
			var calls atomic.Int64
			store := storage.New(GinkgoT().TempDir())
			Expect(store.Init()).To(Succeed())
			reg := countingRegistry(&calls)

			first, err := experiment.New(smallConfig(), experiment.WithRegistry(reg), experiment.WithCache(store)).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			generated := calls.Load()
			Expect(generated).To(Equal(int64(30)))

			second, err := experiment.New(smallConfig(), experiment.WithRegistry(reg), experiment.WithCache(store)).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls.Load()).To(Equal(generated))
			Expect(second.Result.Predictions).To(Equal(first.Result.Predictions))
		})
	})

	Describe("progress", func() {
		It("reports every bucket", func() {
			var seen, total atomic.Int64
			obs := dataset.ObserverFunc(func(p dataset.Progress) {
				seen.Add(1)
				total.Store(int64(p.Total))
			})

			_, err := experiment.New(smallConfig(), experiment.WithObserver(obs)).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(seen.Load()).To(Equal(int64(3)))
			Expect(total.Load()).To(Equal(int64(3)))
		})
	})

	Describe("training failures", func() {
		var fc forest.Config

		BeforeEach(func() {
			fc = forest.DefaultConfig()
			fc.NEstimators = 3
			fc.Seed = 1
		})

		expectTrainingFailure := func(err error) {
			Expect(errors.Is(err, diffusion.ErrTraining)).To(BeTrue())
			var se *diffusion.StageError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Stage).To(Equal(diffusion.StageTrain))
		}

		It("reports fewer labels than rows", func() {
			ds := &dataset.Dataset{
				Mode:   diffusion.Regression,
				TrainX: [][]float64{{0}, {1}, {2}},
				TrainY: []float64{0.5, 1.5},
			}
			model, _, err := experiment.Train(ctx, ds, fc)
			Expect(model).To(BeNil())
			expectTrainingFailure(err)
		})

		It("reports ragged feature rows", func() {
			ds := &dataset.Dataset{
				Mode:    diffusion.Discrimination,
				TrainX:  [][]float64{{0, 1}, {1}},
				TrainY:  []float64{0, 1},
				Classes: []string{"fbm", "sbm"},
			}
			_, _, err := experiment.Train(ctx, ds, fc)
			expectTrainingFailure(err)
		})

		It("reports an empty training partition", func() {
			_, _, err := experiment.Train(ctx, &dataset.Dataset{Mode: diffusion.Regression}, fc)
			expectTrainingFailure(err)
		})

		It("surfaces cancellation without calling it a training failure", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			ds := &dataset.Dataset{
				Mode:   diffusion.Regression,
				TrainX: [][]float64{{0}, {1}},
				TrainY: []float64{0.5, 1.5},
			}

			_, _, err := experiment.Train(cctx, ds, fc)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(errors.Is(err, diffusion.ErrTraining)).To(BeFalse())
			var se *diffusion.StageError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Stage).To(Equal(diffusion.StageTrain))
		})
	})

	It("aborts on a cancelled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := experiment.New(smallConfig()).Run(cctx)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
