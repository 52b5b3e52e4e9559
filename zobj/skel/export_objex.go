package skel

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/objex-tools/animutil/config"
)

const (
	ProfilePlayer = "z64player"
	ProfileNPC    = "z64npc"
)

func (s *Skeleton) Profile() string {
	if s.IsLOD() {
		return ProfilePlayer
	}
	return ProfileNPC
}

// ExportObjex writes the limb tree as an OBJEX .skel file. Unknown
// versions fall back to version 2.
func (s *Skeleton) ExportObjex(w io.Writer, v config.ObjexVersion) error {
	v = config.ResolveObjexVersion(v)
	bw := bufio.NewWriter(w)

	switch v {
	case config.ObjexV1:
		fmt.Fprintf(bw, "limbs %d\n", len(s.Limbs))
	case config.ObjexV2:
		fmt.Fprintf(bw, "newskel \"%s\" \"%s\"\n", s.Name, s.Profile())
	}

	err := s.Walk(func(i, depth int) error {
		p := s.Limbs[i].Position
		pos := fmt.Sprintf("%.2f %.2f %.2f", p[0], p[1], p[2])
		if v == config.ObjexV1 {
			pos = "{" + pos + "}"
		}
		_, err := fmt.Fprintf(bw, "%s+ \"%s\" %s\n", strings.Repeat("\t", depth), LimbName(i), pos)
		return err
	}, func(i, depth int) error {
		_, err := fmt.Fprintf(bw, "%s-\n", strings.Repeat("\t", depth))
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
