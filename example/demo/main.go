// Command demo exercises the node graph against the four-node scenario
// used throughout the engine's own tests: A = A + B + C, C = C + D, with
// every method settable, under plain reads, direct sets, and a nested
// pair of overlay contexts.
package main

import (
	"fmt"
	"net/http"

	"github.com/someahole/nodes"
	"github.com/someahole/nodes/export"
	"github.com/someahole/nodes/watch"
)

type document struct {
	A nodes.Handle
	B nodes.Handle
	C nodes.Handle
	D nodes.Handle
}

func (o *document) GraphMethods() []*nodes.MethodDescriptor {
	return []*nodes.MethodDescriptor{
		nodes.NewMethod("A", nodes.Saved, func(o *document) (string, error) {
			b, err := o.B.Call()
			if err != nil {
				return "", err
			}
			c, err := o.C.Call()
			if err != nil {
				return "", err
			}
			return "A" + b.(string) + c.(string), nil
		}),
		nodes.NewMethod("B", nodes.Saved, func(o *document) string { return "B" }),
		nodes.NewMethod("C", nodes.Saved, func(o *document) (string, error) {
			d, err := o.D.Call()
			if err != nil {
				return "", err
			}
			return "C" + d.(string), nil
		}),
		nodes.NewMethod("D", nodes.Saved, func(o *document) string { return "D" }),
	}
}

func main() {
	logger := nodes.NewStdoutLogger()
	server := watch.NewServer(8)
	registry := nodes.NewRegistry(
		nodes.WithLogger(logger),
		nodes.WithInvalidationListener(server.Listener()),
	)

	doc := &document{}
	handles, err := nodes.Bind(registry, doc)
	must(err)

	a, err := handles["A"].Call()
	must(err)
	fmt.Println("baseline:", a)

	must(handles["D"].Set("q"))
	a, err = handles["A"].Call()
	must(err)
	fmt.Println("after set D=q:", a)

	must(handles["D"].ClearSet())

	outer := nodes.NewContext(registry, nil)
	outer.Enter()
	must(handles["B"].Overlay("b"))
	a, err = handles["A"].Call()
	must(err)
	fmt.Println("inside outer overlay B=b:", a)

	inner := nodes.NewContext(registry, nil)
	inner.Enter()
	must(handles["B"].Overlay("3"))
	a, err = handles["A"].Call()
	must(err)
	fmt.Println("inside nested overlay B=3:", a)
	inner.Exit()

	a, err = handles["A"].Call()
	must(err)
	fmt.Println("after inner exit:", a)
	outer.Exit()

	a, err = handles["A"].Call()
	must(err)
	fmt.Println("after outer exit:", a)

	doc2 := &document{}
	_, err = nodes.Bind(registry, doc2)
	must(err)
	jsonDoc, err := export.JSON(registry, doc2)
	must(err)
	fmt.Println("exported json:", string(jsonDoc))

	http.Handle("/watch", server.Handler())
	fmt.Println("listening on :8090 for invalidation subscribers (ws://localhost:8090/watch)")
	must(http.ListenAndServe(":8090", nil))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
