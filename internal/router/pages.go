package router

import "fmt"

const (
	pageHead = "<!doctype html><html><head><meta charset='utf-8'><title>%s</title></head>" +
		"<body style='font-family: sans-serif'>"
	pageTail = "</body></html>"
	homeLink = "<p><a href='/'>返回首页</a></p>"
)

var (
	indexPage = fmt.Sprintf(pageHead, "Index") +
		"<h1>Mini Go HTTP Server</h1>" +
		"<ul>" +
		"<li><a href='/hello'>/hello</a></li>" +
		"<li><a href='/time'>/time</a></li>" +
		"</ul>" +
		pageTail

	helloPage = fmt.Sprintf(pageHead, "Hello") +
		"<h1>Hello from Go!</h1>" +
		"<p>这是 /hello 页面。</p>" +
		homeLink +
		pageTail
)

func timePage(stamp string) string {
	return fmt.Sprintf(pageHead, "Time") +
		"<h1>当前时间</h1>" +
		"<p>" + stamp + "</p>" +
		homeLink +
		pageTail
}

// The path and method are echoed verbatim so clients see exactly what the
// server received.
func notFoundPage(path string) string {
	return fmt.Sprintf(pageHead, "404") +
		"<h1>404 Not Found</h1>" +
		"<p>Path: " + path + "</p>" +
		homeLink +
		pageTail
}

func methodNotAllowedPage(method string) string {
	return fmt.Sprintf(pageHead, "405") +
		"<h1>405 Method Not Allowed</h1>" +
		"<p>Method: " + method + "</p>" +
		"<p>Only GET is supported.</p>" +
		pageTail
}
