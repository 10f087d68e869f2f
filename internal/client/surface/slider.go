package surface

import (
	"context"
	"sync"
	"time"

	"github.com/atinyakov/travelsite/internal/models"
)

// SlideInterval is how often the home slider advances.
const SlideInterval = 4 * time.Second

// FallbackImages are shown when no home images have been uploaded.
var FallbackImages = []string{
	"https://picsum.photos/800/400?random=1",
	"https://picsum.photos/800/400?random=2",
	"https://picsum.photos/800/400?random=3",
}

// SlideImages resolves the slider URLs, falling back to placeholders.
func SlideImages(images []models.HomeImage, resolve func(string) string) []string {
	if len(images) == 0 {
		return FallbackImages
	}
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, resolve(img.URL))
	}
	return urls
}

// Slider cycles an index over a number of slides.
type Slider struct {
	mu    sync.Mutex
	index int
	count int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSlider creates a stopped slider over count slides.
func NewSlider(count int) *Slider {
	return &Slider{count: count, stop: make(chan struct{})}
}

// Index returns the current slide.
func (s *Slider) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// SetCount changes the number of slides, rewinding when the index falls
// outside the new range.
func (s *Slider) SetCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = n
	if s.index >= n {
		s.index = 0
	}
}

func (s *Slider) advance() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return 0, false
	}
	s.index = (s.index + 1) % s.count
	return s.index, true
}

// Start advances every interval until ctx is done or Stop is called.
// onTick, if set, receives each new index.
func (s *Slider) Start(ctx context.Context, interval time.Duration, onTick func(int)) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				if i, ok := s.advance(); ok && onTick != nil {
					onTick(i)
				}
			}
		}
	}()
}

// Stop ends the ticker. Safe to call more than once.
func (s *Slider) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
