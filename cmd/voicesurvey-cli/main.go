package main

import (
	"voicesurvey-backend/cmd/voicesurvey-cli/commands"
	"voicesurvey-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
