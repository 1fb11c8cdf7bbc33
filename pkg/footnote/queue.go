package footnote

// Queue stores footnote bodies between the moment they close and the moment
// they are dumped. Sequence numbers start at 1 and grow by one per Enqueue for
// the lifetime of the queue, no matter how often it is drained. PopFront
// returns entries in the order they were enqueued.
//
// Enqueue must not retain body after it returns. Implementations are not safe
// for concurrent use.
type Queue interface {
	Enqueue(body []byte) (uint64, error)
	PopFront() (Entry, bool, error)
}

// MemoryQueue is an in-memory Queue.
type MemoryQueue struct {
	entries []Entry
	head    int
	seq     uint64
}

// NewMemoryQueue returns an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// Enqueue copies body to the back of the queue and returns its sequence number.
func (q *MemoryQueue) Enqueue(body []byte) (uint64, error) {
	q.seq++
	q.entries = append(q.entries, Entry{
		Seq:  q.seq,
		Body: append([]byte(nil), body...),
	})
	return q.seq, nil
}

// PopFront removes and returns the oldest entry.
func (q *MemoryQueue) PopFront() (Entry, bool, error) {
	if q.head >= len(q.entries) {
		return Entry{}, false, nil
	}
	e := q.entries[q.head]
	q.entries[q.head] = Entry{}
	q.head++

	// Reclaim the backing array once fully drained.
	if q.head == len(q.entries) {
		q.entries = q.entries[:0]
		q.head = 0
	}
	return e, true, nil
}

// Len returns the number of undrained entries.
func (q *MemoryQueue) Len() int {
	return len(q.entries) - q.head
}
