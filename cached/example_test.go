package cached_test

import (
	"context"
	"errors"
	"fmt"

	"go.lepak.sg/cachediter/cached"
	"go.lepak.sg/cachediter/source"
)

func ExampleWrap() {
	pulls := 0
	i := 0
	numbers := source.Func[int](func() (int, error) {
		if i == 5 {
			return 0, source.Done
		}
		pulls++
		i++
		return i - 1, nil
	})

	it := cached.Wrap[int](numbers)

	for pass := 1; pass <= 2; pass++ {
		for v, err := range it.All() {
			if err != nil {
				fmt.Println(err)
				return
			}
			fmt.Print(v, " ")
		}
		fmt.Printf("(pulls so far: %d)\n", pulls)
	}

	// Output:
	// 0 1 2 3 4 (pulls so far: 5)
	// 0 1 2 3 4 (pulls so far: 5)
}

func ExampleWrap_failure() {
	vals := []int{10, 20}
	broken := errors.New("connection reset")
	src := source.Func[int](func() (int, error) {
		if len(vals) == 0 {
			return 0, broken
		}
		v := vals[0]
		vals = vals[1:]
		return v, nil
	})

	it := cached.Wrap[int](src)
	for pass := 1; pass <= 2; pass++ {
		got, err := it.Collect()
		fmt.Println(got, err, errors.Is(err, broken))
	}

	// Output:
	// [10 20] cached: source failed at index 2: connection reset true
	// [10 20] cached: source failed at index 2: connection reset true
}

func ExampleDecorate() {
	evaluations := 0
	letters := cached.Decorate(func() source.Source[string] {
		evaluations++
		return source.Slice([]string{"a", "b"})
	})

	first := letters()
	first.Collect()
	first.Collect()
	letters().Collect()

	fmt.Println(evaluations)

	// Output:
	// 2
}

func ExampleCoIterate() {
	ch := make(chan string, 3)
	ch <- "x"
	ch <- "y"
	ch <- "z"
	close(ch)

	it := cached.WrapAsync(source.AsyncChan(ch))
	ctx := context.Background()

	for pass := 0; pass < 2; pass++ {
		co := cached.CoIterate(ctx, it)
		for s := range co.Items() {
			fmt.Print(s)
		}
		fmt.Println(co.Err())
	}

	// Output:
	// xyz<nil>
	// xyz<nil>
}
