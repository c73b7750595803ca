// Command xenovate serves LLM-backed code analysis, optimization,
// conversion and explanation.
package main

import "github.com/FahadBinHussain/Xenovate/internal/cli"

func main() {
	cli.Execute()
}
