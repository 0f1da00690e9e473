package ssa_test

import (
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gillespie/internal/metrics"
	"github.com/san-kum/gillespie/internal/ssa"
)

// fixedSource returns the same uniform and exponential variate on every draw
// and counts how many of each were taken.
type fixedSource struct {
	u, e        float64
	uniforms    int
	exponential int
}

func (f *fixedSource) Float64() float64 {
	f.uniforms++
	return f.u
}

func (f *fixedSource) ExpFloat64() float64 {
	f.exponential++
	return f.e
}

var _ = Describe("Sampler", func() {
	for _, kind := range ssa.Kinds() {
		kind := kind

		Describe(kind, func() {
			var s ssa.Sampler

			BeforeEach(func() {
				var err error
				s, err = ssa.New(kind, 3)
				Expect(err).NotTo(HaveOccurred())
			})

			Context("after reset", func() {
				It("has zero total and zero propensities", func() {
					Expect(s.Update(1, 5)).To(Succeed())
					s.Reset(4)
					Expect(s.Size()).To(Equal(4))
					Expect(s.TotalPropensity()).To(BeZero())
					for k := 0; k < 4; k++ {
						Expect(s.Propensity(k)).To(BeZero())
					}
				})

				It("accepts an empty key space", func() {
					s.Reset(0)
					Expect(s.Size()).To(BeZero())
					_, err := s.Next(&fixedSource{u: 0.5, e: 1})
					Expect(err).To(MatchError(ssa.ErrNoPropensity))
				})

				It("can be built empty and grown", func() {
					empty, err := ssa.New(kind, 0)
					Expect(err).NotTo(HaveOccurred())
					empty.Reset(2)
					Expect(empty.Update(1, 2)).To(Succeed())
					ev, err := empty.Next(&fixedSource{u: 0.9, e: 1})
					Expect(err).NotTo(HaveOccurred())
					Expect(ev.Key).To(Equal(1))
				})

				It("can shrink and grow again", func() {
					Expect(s.Update(2, 7)).To(Succeed())
					s.Reset(1)
					s.Reset(3)
					Expect(s.Propensity(2)).To(BeZero())
					Expect(s.TotalPropensity()).To(BeZero())
				})
			})

			Context("update", func() {
				It("tracks replacement rather than accumulation", func() {
					Expect(s.Update(0, 2.5)).To(Succeed())
					Expect(s.Update(0, 1.5)).To(Succeed())
					Expect(s.Update(2, 4)).To(Succeed())
					Expect(s.Update(2, 0)).To(Succeed())
					Expect(s.TotalPropensity()).To(BeNumerically("~", 1.5, 1e-12))
				})

				It("keeps the total equal to the sum of propensities", func() {
					rng := rand.New(rand.NewSource(7))
					s.Reset(50)
					for i := 0; i < 10000; i++ {
						Expect(s.Update(rng.Intn(50), rng.Float64()*10)).To(Succeed())
					}
					sum := 0.0
					for k := 0; k < s.Size(); k++ {
						p, err := s.Propensity(k)
						Expect(err).NotTo(HaveOccurred())
						sum += p
					}
					Expect(s.TotalPropensity()).To(BeNumerically("~", sum, 1e-9))
				})

				It("rejects keys outside the table", func() {
					for _, key := range []int{-1, 3, 100} {
						err := s.Update(key, 1)
						Expect(errors.Is(err, ssa.ErrKeyOutOfRange)).To(BeTrue())

						var ke *ssa.KeyError
						Expect(errors.As(err, &ke)).To(BeTrue())
						Expect(ke.Key).To(Equal(key))
						Expect(ke.Size).To(Equal(3))

						_, err = s.Propensity(key)
						Expect(err).To(MatchError(ssa.ErrKeyOutOfRange))
					}
					Expect(s.TotalPropensity()).To(BeZero())
				})
			})

			Context("boundary table {1, 0, 3}", func() {
				BeforeEach(func() {
					Expect(s.Update(0, 1.0)).To(Succeed())
					Expect(s.Update(1, 0.0)).To(Succeed())
					Expect(s.Update(2, 3.0)).To(Succeed())
				})

				It("sums to 4", func() {
					Expect(s.TotalPropensity()).To(Equal(4.0))
				})

				It("selects key 0 for x = 0.5", func() {
					ev, err := s.Next(&fixedSource{u: 0.5 / 4, e: 2})
					Expect(err).NotTo(HaveOccurred())
					Expect(ev.Key).To(Equal(0))
					Expect(ev.Dt).To(Equal(0.5))
				})

				It("selects key 2 for x = 3.5", func() {
					ev, err := s.Next(&fixedSource{u: 3.5 / 4, e: 1})
					Expect(err).NotTo(HaveOccurred())
					Expect(ev.Key).To(Equal(2))
					Expect(ev.Dt).To(Equal(0.25))
				})

				It("never selects the zero-propensity key", func() {
					for _, u := range []float64{0, 0.1, 0.24, 0.25, 0.2500001, 0.5, 0.99} {
						ev, err := s.Next(&fixedSource{u: u, e: 1})
						Expect(err).NotTo(HaveOccurred())
						Expect(ev.Key).NotTo(Equal(1), "u=%v", u)
					}
				})

				It("consumes one uniform and one exponential draw", func() {
					src := &fixedSource{u: 0.3, e: 1}
					_, err := s.Next(src)
					Expect(err).NotTo(HaveOccurred())
					Expect(src.uniforms).To(Equal(1))
					Expect(src.exponential).To(Equal(1))
				})

				It("fails when the draw lands on the total", func() {
					src := &fixedSource{u: 1.0, e: 1}
					_, err := s.Next(src)
					Expect(err).To(MatchError(ssa.ErrLadderExhausted))

					var le *ssa.LadderError
					Expect(errors.As(err, &le)).To(BeTrue())
					Expect(le.Draw).To(Equal(4.0))
					Expect(le.Total).To(Equal(4.0))
					Expect(src.exponential).To(BeZero())
				})
			})

			Context("with a key zeroed after several updates", func() {
				BeforeEach(func() {
					Expect(s.Update(0, 1.0)).To(Succeed())
					Expect(s.Update(2, 3.0)).To(Succeed())
					for _, r := range []float64{0.1, 0.2, 0} {
						Expect(s.Update(1, r)).To(Succeed())
					}
				})

				It("never selects it at u = 0.25", func() {
					ev, err := s.Next(&fixedSource{u: 0.25, e: 1})
					Expect(err).NotTo(HaveOccurred())
					Expect(ev.Key).NotTo(Equal(1))
				})

				It("never selects it around the edge of its old interval", func() {
					us := []float64{
						math.Nextafter(0.25, 0),
						math.Nextafter(0.25, 1),
						math.Nextafter(math.Nextafter(0.25, 1), 1),
					}
					for i := -50; i <= 50; i++ {
						us = append(us, 0.25+float64(i)*1e-6)
					}
					for _, u := range us {
						ev, err := s.Next(&fixedSource{u: u, e: 1})
						Expect(err).NotTo(HaveOccurred())
						Expect(ev.Key).NotTo(Equal(1), "u=%v", u)
					}
				})
			})

			It("refuses to sample an all-zero table", func() {
				src := &fixedSource{u: 0.5, e: 1}
				_, err := s.Next(src)
				Expect(err).To(MatchError(ssa.ErrNoPropensity))
				Expect(src.uniforms).To(BeZero())
			})

			Context("with a seeded source", func() {
				const draws = 200000
				rates := []float64{1, 2, 0, 3, 4}

				var (
					counts []int
					dts    []float64
				)

				BeforeEach(func() {
					s.Reset(len(rates))
					for k, r := range rates {
						Expect(s.Update(k, r)).To(Succeed())
					}

					rng := rand.New(rand.NewSource(42))
					counts = make([]int, len(rates))
					dts = make([]float64, 0, draws)
					for i := 0; i < draws; i++ {
						ev, err := s.Next(rng)
						Expect(err).NotTo(HaveOccurred())
						counts[ev.Key]++
						dts = append(dts, ev.Dt)
					}
				})

				It("selects keys in proportion to propensity", func() {
					probs := make([]float64, len(rates))
					for k, r := range rates {
						probs[k] = r / 10
					}
					Expect(counts[2]).To(BeZero())

					stat, df := metrics.ChiSquareStatistic(counts, probs)
					Expect(df).To(Equal(3))
					Expect(metrics.ChiSquarePValue(stat, df)).To(BeNumerically(">", 0.001))
				})

				It("draws waiting times from Exp(total)", func() {
					mean := 0.0
					for _, dt := range dts {
						Expect(dt).To(BeNumerically(">=", 0))
						mean += dt
					}
					mean /= float64(len(dts))
					Expect(mean).To(BeNumerically("~", 0.1, 0.001))

					d := metrics.KSExponentialStatistic(dts, 10)
					Expect(d).To(BeNumerically("<", metrics.KSCritical(len(dts), 0.001)))
				})
			})
		})
	}

	It("produces the same keys from both samplers for the same draws", func() {
		rates := []float64{0.5, 0, 0, 2, 1.25, 0, 3, 0.25}
		direct := ssa.NewDirect(len(rates))
		indexed := ssa.NewIndexed(len(rates))
		for k, r := range rates {
			Expect(direct.Update(k, r)).To(Succeed())
			Expect(indexed.Update(k, r)).To(Succeed())
		}

		for i := 0; i < 64; i++ {
			u := float64(i) / 64
			a, errA := direct.Next(&fixedSource{u: u, e: 1})
			b, errB := indexed.Next(&fixedSource{u: u, e: 1})
			Expect(errA).NotTo(HaveOccurred())
			Expect(errB).NotTo(HaveOccurred())
			Expect(b.Key).To(Equal(a.Key), "u=%v", u)
		}
	})

	It("rejects unknown sampler kinds", func() {
		_, err := ssa.New("tree", 3)
		Expect(err).To(MatchError(ssa.ErrUnknownSampler))
	})

	It("keeps a NaN total from sampling", func() {
		s := ssa.NewDirect(1)
		Expect(s.Update(0, math.NaN())).To(Succeed())
		_, err := s.Next(&fixedSource{u: 0.5, e: 1})
		Expect(err).To(MatchError(ssa.ErrNoPropensity))
	})
})
