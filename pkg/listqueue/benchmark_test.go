package listqueue

import (
	"strconv"
	"testing"
)

func BenchmarkPushPop(b *testing.B) {
	for _, batch := range []int{1, 64, 4096} {
		b.Run("Batch"+strconv.Itoa(batch), func(b *testing.B) {
			q := New[int]()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				for j := 0; j < batch; j++ {
					q.Push(j)
				}
				for j := 0; j < batch; j++ {
					q.Pop()
				}
			}
		})
	}
}
