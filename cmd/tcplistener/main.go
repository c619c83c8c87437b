package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/indigo-web/utils/uf"

	"minihttp/internal/request"
	"minihttp/internal/response"
	"minihttp/internal/router"
)

const PORT = ":8081"

// tcplistener prints what the framer and parser make of every connection,
// then answers the way the responder would.
func main() {
	tcp, err := net.Listen("tcp", PORT)
	if err != nil {
		fmt.Println("ERROR: failed to open.\n", err.Error())
		os.Exit(1)
	}
	defer tcp.Close()

	r := router.New()

	fmt.Println("Listening for TCP traffic on", PORT)
	fmt.Println("Routes:", strings.Join(r.Paths(), " "))
	for {
		conn, err := tcp.Accept()
		if err != nil {
			fmt.Println("ERROR: failed to accept.\n", err)
			continue
		}
		handleConn(conn, r)
	}
}

func handleConn(conn net.Conn, r *router.Router) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second)) // optional safety

	resp := response.BadRequest()
	req, err := request.FromReader(conn, request.DefaultMaxRequestSize)
	switch {
	case errors.Is(err, request.ErrRead):
		fmt.Println("ERROR: failed to read request:", err)
		return
	case err != nil:
		fmt.Println("ERROR: bad request:", err)
	default:
		fmt.Printf("=== Incoming request (%d bytes) ===\n", len(req.Header))
		fmt.Println(strings.TrimRight(uf.B2S(req.Header), "\r\n"))

		rl := req.RequestLine
		fmt.Printf("Request line:\n- Method: %s\n- Target: %s\n- Version: %s\n",
			rl.Method, rl.RequestTarget, rl.HTTPVersion)
		resp = r.Route(*rl)
	}

	fmt.Printf("Response: %d %s (%d body bytes)\n", resp.StatusCode, resp.Reason, len(resp.Body))
	if _, err := response.NewWriter(conn).WriteResponse(resp); err != nil {
		fmt.Println("ERROR: failed to write response:", err)
	}
}
