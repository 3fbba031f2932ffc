package crawler

import "sync"

// frontier is the FIFO of candidate URLs plus the visited set. Claiming a
// URL, checking the page budget and recording the outcome all happen under
// mu, so concurrent workers never fetch one URL twice or overrun maxPages.
type frontier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []string
	queued   map[string]struct{}
	inFlight map[string]struct{}
	visited  map[string]struct{}
	maxPages int
	closed   bool
}

func newFrontier(maxPages int) *frontier {
	f := &frontier{
		queued:   make(map[string]struct{}),
		inFlight: make(map[string]struct{}),
		visited:  make(map[string]struct{}),
		maxPages: maxPages,
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// push enqueues url unless it is visited, queued or being fetched.
func (f *frontier) push(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushLocked(url)
}

func (f *frontier) pushLocked(url string) bool {
	if _, ok := f.visited[url]; ok {
		return false
	}
	if _, ok := f.queued[url]; ok {
		return false
	}
	if _, ok := f.inFlight[url]; ok {
		return false
	}
	f.queue = append(f.queue, url)
	f.queued[url] = struct{}{}
	return true
}

// next claims the oldest queued URL. It blocks while the budget is fully
// committed to in-flight fetches, and returns false once the crawl is over:
// budget reached, nothing left to fetch, or closed.
func (f *frontier) next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		switch {
		case f.closed, len(f.visited) >= f.maxPages:
			return "", false
		case len(f.queue) == 0 && len(f.inFlight) == 0:
			return "", false
		case len(f.queue) > 0 && len(f.visited)+len(f.inFlight) < f.maxPages:
			url := f.queue[0]
			f.queue[0] = ""
			f.queue = f.queue[1:]
			delete(f.queued, url)
			f.inFlight[url] = struct{}{}
			return url, true
		}
		f.cond.Wait()
	}
}

// complete releases a claim. A successful fetch marks url visited and
// enqueues its links; a failed one leaves url unvisited.
func (f *frontier) complete(url string, ok bool, links []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.inFlight, url)
	if ok {
		f.visited[url] = struct{}{}
		for _, link := range links {
			f.pushLocked(link)
		}
	}
	f.cond.Broadcast()
}

func (f *frontier) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
}

func (f *frontier) stats() (queued, visited int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue), len(f.visited)
}

