package cache_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/colorize/internal/cache"
	"github.com/flanksource/colorize/models"
)

var _ = Describe("AnnotationCache", func() {
	var c *cache.AnnotationCache

	entry := func(color string) models.LineAnnotations {
		m := models.NewLineAnnotations()
		m.Append(1, models.NewAnnotation(models.Range{Line: 1, EndCol: len(color)}, color))
		return m
	}

	BeforeEach(func() {
		c = cache.NewAnnotationCache(3)
	})

	Describe("Get", func() {
		It("should return not-found for an absent key", func() {
			_, ok := c.Get("missing.css", false)
			Expect(ok).To(BeFalse())
		})

		It("should promote the key so it survives the next overflow", func() {
			c.Put("a", false, entry("#111"))
			c.Put("b", false, entry("#222"))
			c.Put("c", false, entry("#333"))

			_, ok := c.Get("a", false)
			Expect(ok).To(BeTrue())

			c.Put("d", false, entry("#444"))

			_, ok = c.Get("a", false)
			Expect(ok).To(BeTrue(), "a was most recently used and must survive")
			_, ok = c.Get("b", false)
			Expect(ok).To(BeFalse(), "b became least recently used")
		})
	})

	Describe("Put", func() {
		It("should evict in least-recently-used order under pressure", func() {
			for i := 0; i < 6; i++ {
				c.Put(models.DocKey(fmt.Sprintf("doc-%d", i)), true, entry("#abc"))
			}

			stats := c.Stats()
			Expect(stats.DirtyLen).To(Equal(3))
			Expect(stats.Evictions).To(Equal(uint64(3)))
			for i := 3; i < 6; i++ {
				_, ok := c.Get(models.DocKey(fmt.Sprintf("doc-%d", i)), true)
				Expect(ok).To(BeTrue())
			}
		})

		It("should keep the dirty and saved partitions independent", func() {
			c.Put("a.css", true, entry("#111"))

			_, ok := c.Get("a.css", false)
			Expect(ok).To(BeFalse())

			got, ok := c.Get("a.css", true)
			Expect(ok).To(BeTrue())
			Expect(got).To(HaveLen(1))
		})
	})

	Describe("Clear", func() {
		It("should empty both partitions", func() {
			c.Put("a.css", true, entry("#111"))
			c.Put("b.css", false, entry("#222"))

			c.Clear()

			Expect(c.Stats().DirtyLen).To(BeZero())
			Expect(c.Stats().SavedLen).To(BeZero())
		})
	})
})
