package websocket

import (
	"github.com/ezekaj/learning-sol-sub000/internal/websocket/handlers"
	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
)

// onSessionEvent registers a typed in-session event handler: decode the
// payload, run the ingest guards, then either bounce the error payload back
// to the caller or enqueue the instruction onto the session loop. Payloads
// that fail validation are dropped.
func onSessionEvent[Req any, Instr any](
	s *SocketIOServer,
	client *socket.Socket,
	event string,
	ingest func(handlers.AuthContext, Req) (*Instr, *protocolwire.ErrorPayload),
	enqueue func(*Instr),
) {
	client.On(event, func(data ...any) {
		socketID := string(client.Id())
		sd := s.getSocketData(socketID)
		raw, _ := getFirstAnyWithAck(data)

		var req Req
		if err := decodeAny(raw, &req); err != nil {
			logger.Warnf("%s decode error: %v (type=%T)", event, err, raw)
			return
		}

		auth := handlers.NewAuthContext(sd.UserID(), sd.SessionID(), socketID)
		instr, errPayload := ingest(auth, req)
		if errPayload != nil {
			client.Emit("error", *errPayload)
			return
		}
		if instr == nil {
			logger.Warnf("Dropping invalid %s payload (user %s, socket %s)", event, sd.UserID(), socketID)
			return
		}
		enqueue(instr)
	})
}
