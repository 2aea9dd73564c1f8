package twostack_test

import (
	"fmt"

	"github.com/i5heu/twostackqueue/pkg/twostack"
)

func ExampleQueue() {
	q := twostack.New[string]()
	q.Push("P")
	q.Push("D")
	front, _ := q.Pop()
	q.Push("X")

	older, younger := q.Split()
	fmt.Println(front, older, younger)
	// Output: P [D] [X]
}

func ExampleQueue_Pop() {
	var q twostack.Queue[int]
	q.Push(1)
	for {
		v, ok := q.Pop()
		if !ok {
			fmt.Println("empty")
			break
		}
		fmt.Println(v)
	}
	// Output:
	// 1
	// empty
}
