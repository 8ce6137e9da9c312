package main

import (
	"bufio"
	"eloladder/internal/back"
	"eloladder/internal/elo"
	"eloladder/internal/util"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errEOF is returned by ask when the input is exhausted.
var errEOF = errors.New("end of input")

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errEOF
	}

	return strings.TrimSpace(p.in.Text()), nil
}

// prompt records matches typed on the terminal until the user stops.
func prompt(b *back.Back, in io.Reader, out io.Writer) error {
	p := prompter{in: bufio.NewScanner(in), out: out}

	if err := printStandings(b, out, 0); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nWelcome to the Elo Rating System!")

	for {
		err := promptMatch(b, p)
		if errors.Is(err, errEOF) {
			return nil
		}
		if err != nil && !util.IsPublic(err) {
			return err
		}
		if err != nil {
			fmt.Fprintf(out, "%s\n", err)
			continue
		}

		if err := printStandings(b, out, 0); err != nil {
			return err
		}

		answer, err := p.ask("\nDo you want to enter another match? (yes/no)(y/n): ")
		if errors.Is(err, errEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if answer = strings.ToLower(answer); answer != "yes" && answer != "y" {
			fmt.Fprintln(out, "Exiting Elo System. Goodbye!")
			return nil
		}
	}
}

func promptMatch(b *back.Back, p prompter) error {
	player1, err := p.ask("\nEnter the name of Player 1: ")
	if err != nil {
		return err
	}
	player2, err := p.ask("Enter the name of Player 2: ")
	if err != nil {
		return err
	}
	player1, player2 = util.NormalizeName(player1), util.NormalizeName(player2)

	var scores [2]float64
	for k, name := range []string{player1, player2} {
		str, err := p.ask(fmt.Sprintf("Enter %s's score: ", name))
		if err != nil {
			return err
		}

		if scores[k], err = util.ParseScore(str); err != nil {
			return util.ErrPublic("Invalid input. Please enter numeric scores.")
		}
	}

	res, err := b.RecordMatch(player1, player2, scores[0], scores[1], "")
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "\nMatch recorded: %s\nUpdated Ratings:\n", res.Record)
	back.WriteUpdate(p.out, player1, player2, res.Update)

	return nil
}

func printStandings(b *back.Back, out io.Writer, limit int) error {
	entries, err := b.GetLeaderboard(limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nCurrent Elo Ratings and Stats:")
	return back.WriteStandings(out, entries)
}

// preview prints the outcome of a hypothetical match without touching any
// stored data.
func preview(out io.Writer, kFactor float64, args []string) error {
	if len(args) != 4 {
		return errors.New("expected 4 arguments: R1 R2 S1 S2")
	}

	values := make([]float64, 0, len(args))
	for _, v := range args {
		f, err := util.ParseScore(v)
		if err != nil {
			return err
		}
		values = append(values, f)
	}

	update := elo.ComputeUpdate(values[0], values[1], values[2], values[3], elo.KFactorOrDefault(kFactor))
	back.WriteUpdate(out, "player one", "player two", update)

	return nil
}
