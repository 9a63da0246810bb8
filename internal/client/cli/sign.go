package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sterilpoint/protokol/internal/client/sigpad"
	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
)

const (
	padWidth  = 400
	padHeight = 150
)

// Sign captures signatures for one leg of an entry. The client slot is drawn
// on the pad; the staff slot may be drawn, answered with "default" to use the
// stored staff image, or skipped. Skipped slots are left untouched.
func (a *App) Sign(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) != 2 {
		log.Println("usage: sign <index> <transfer|return>")
		return common.ErrorValidation
	}
	index, err := parseIndex(args[0])
	if err != nil {
		log.Println(err.Error())
		return err
	}
	leg := models.Leg(args[1])
	if !leg.Valid() {
		log.Println("leg must be 'transfer' or 'return'")
		return common.ErrorValidation
	}

	clientPNG, err := GetSignature(a.reader, "Client signature", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	var staffPNG []byte
	var useDefaultStaff bool
	answer, err := GetSimpleText(a.reader, "Staff signature: (d)raw, use (s)tored default, or enter to skip", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	switch strings.ToLower(answer) {
	case "d", "draw":
		staffPNG, err = GetSignature(a.reader, "Staff signature", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
	case "s", "default":
		useDefaultStaff = true
	}

	if clientPNG == nil && staffPNG == nil && !useDefaultStaff {
		fmt.Println("Nothing signed")
		return nil
	}

	if err := a.ledger.Sign(ctx, index, leg, clientPNG, staffPNG, useDefaultStaff); err != nil {
		log.Printf("error signing entry: %v", err)
		return err
	}
	fmt.Println("Signed")
	return nil
}

// Unsign clears one signature slot.
func (a *App) Unsign(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) != 3 {
		log.Println("usage: unsign <index> <transfer|return> <client|staff>")
		return common.ErrorValidation
	}
	index, err := parseIndex(args[0])
	if err != nil {
		log.Println(err.Error())
		return err
	}
	leg := models.Leg(args[1])
	who := models.Party(args[2])
	if !leg.Valid() || !who.Valid() {
		log.Println("usage: unsign <index> <transfer|return> <client|staff>")
		return common.ErrorValidation
	}

	if err := a.ledger.DeleteSignature(ctx, index, leg, who); err != nil {
		log.Printf("error removing signature: %v", err)
		return err
	}
	fmt.Println("Signature removed")
	return nil
}

// GetSignature collects pen strokes from the reader and renders them on a
// signature pad. Each line is one stroke as space-separated "x,y" pairs; an
// empty line finishes. Returns nil when nothing was drawn.
func GetSignature(reader *bufio.Reader, prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprintf(w, "%s (%dx%d)\n(one stroke per line as x,y pairs separated by spaces; empty line to finish)\n", prompt, padWidth, padHeight); err != nil {
		return nil, err
	}

	pad := sigpad.New(padWidth, padHeight)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		points, perr := parseStroke(line)
		if perr != nil {
			fmt.Fprintf(w, "skipping stroke: %v\n", perr)
		} else {
			pad.Stroke(points)
		}
		if err != nil {
			break
		}
	}
	return pad.Commit()
}

func parseStroke(line string) ([]sigpad.Point, error) {
	fields := strings.Fields(line)
	points := make([]sigpad.Point, 0, len(fields))
	for _, f := range fields {
		xy := strings.SplitN(f, ",", 2)
		if len(xy) != 2 {
			return nil, fmt.Errorf("%q is not an x,y pair", f)
		}
		x, err := strconv.Atoi(xy[0])
		if err != nil {
			return nil, fmt.Errorf("%q is not an x,y pair", f)
		}
		y, err := strconv.Atoi(xy[1])
		if err != nil {
			return nil, fmt.Errorf("%q is not an x,y pair", f)
		}
		points = append(points, sigpad.Point{X: x, Y: y})
	}
	return points, nil
}
